// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"testing"
)

func TestParsePersonalityLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected PersonalityLevel
	}{
		{"full", PersonalityFull},
		{"f", PersonalityFull},
		{"FULL", PersonalityFull},
		{"standard", PersonalityStandard},
		{"std", PersonalityStandard},
		{"s", PersonalityStandard},
		{"minimal", PersonalityMinimal},
		{"min", PersonalityMinimal},
		{"m", PersonalityMinimal},
		{"machine", PersonalityMachine},
		{"quiet", PersonalityMachine},
		{"q", PersonalityMachine},
		{"bogus", PersonalityStandard},
		{"", PersonalityStandard},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParsePersonalityLevel(tt.input)
			if got != tt.expected {
				t.Errorf("ParsePersonalityLevel(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSetAndGetPersonality(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	SetPersonality(Personality{Level: PersonalityMinimal})
	if got := GetPersonality().Level; got != PersonalityMinimal {
		t.Errorf("expected minimal, got %q", got)
	}

	SetPersonalityLevel(PersonalityMachine)
	if got := GetPersonality().Level; got != PersonalityMachine {
		t.Errorf("expected machine, got %q", got)
	}
}

func TestInitPersonality_EnvOverride(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	t.Setenv("GRIDLOCK_PERSONALITY", "minimal")
	InitPersonality()

	if got := GetPersonality().Level; got != PersonalityMinimal {
		t.Errorf("expected env var to set minimal, got %q", got)
	}
}

func TestInitPersonality_NonTTYDefaultsToMachine(t *testing.T) {
	orig := GetPersonality()
	defer SetPersonality(orig)

	t.Setenv("GRIDLOCK_PERSONALITY", "")
	// Under go test stdout is not a terminal
	InitPersonality()

	if got := GetPersonality().Level; got != PersonalityMachine {
		t.Errorf("expected machine for non-TTY stdout, got %q", got)
	}
}

func TestDefaultPersonality(t *testing.T) {
	p := DefaultPersonality()
	if p.Level != PersonalityFull {
		t.Errorf("expected full default, got %q", p.Level)
	}
}
