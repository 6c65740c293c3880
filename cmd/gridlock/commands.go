// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"github.com/AleutianAI/gridlock/cmd/gridlock/config"
	"github.com/AleutianAI/gridlock/pkg/ux"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	serverURL        string
	jsonOutput       bool
	personalityLevel string // UX personality level (full/standard/minimal/machine)
	outputFile       string // visualize target file

	rootCmd = &cobra.Command{
		Use:   "gridlock",
		Short: "A cli for the Gridlock deadlock detection service",
		Long: `Gridlock declares processes holding and requesting resources,
				detects circular waits in the allocation graph, and resolves
				them by terminating a victim process.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Config is optional for a client; fall back to flags and env
			if err := config.Load(); err != nil {
				ux.Warning("Could not load config: " + err.Error())
			}
			// Initialize UX personality from flag, environment, or config
			switch {
			case personalityLevel != "":
				ux.SetPersonalityLevel(ux.ParsePersonalityLevel(personalityLevel))
			case config.Global.Personality != "":
				ux.SetPersonalityLevel(ux.ParsePersonalityLevel(config.Global.Personality))
			default:
				ux.InitPersonality()
			}
		},
	}

	// --- State Inspection ---
	statusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show service health, process count, and deadlock state",
		Run:   runStatus, // Defined in cmd_state.go
	}
	psCmd = &cobra.Command{
		Use:   "ps",
		Short: "List declared processes with held and requested resources",
		Run:   runPs, // Defined in cmd_state.go
	}

	// --- State Mutation ---
	addCmd = &cobra.Command{
		Use:   "add [name holds requests]",
		Short: "Declare a process; prompts interactively when run without arguments",
		Args:  cobra.RangeArgs(0, 3),
		Run:   runAdd, // Defined in cmd_state.go
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Remove every declared process",
		Run:   runClear, // Defined in cmd_state.go
	}

	// --- Detection / Resolution ---
	detectCmd = &cobra.Command{
		Use:   "detect",
		Short: "Check the allocation graph for a circular wait",
		Run:   runDetect, // Defined in cmd_detect.go
	}
	resolveCmd = &cobra.Command{
		Use:   "resolve",
		Short: "Terminate a victim process to break the deadlock",
		Run:   runResolve, // Defined in cmd_detect.go
	}
	visualizeCmd = &cobra.Command{
		Use:   "visualize",
		Short: "Render the allocation graph to a PNG file",
		Run:   runVisualize, // Defined in cmd_detect.go
	}

	// --- Chat ---
	chatCmd = &cobra.Command{
		Use:   "chat [message]",
		Short: "Ask the LLM to explain the current allocation state",
		Args:  cobra.MinimumNArgs(1),
		Run:   runChat, // Defined in cmd_chat.go
	}

	// --- Scenario Presets ---
	scenariosCmd = &cobra.Command{
		Use:   "scenarios",
		Short: "List the available scenario presets",
		Run:   runScenarios, // Defined in cmd_scenarios.go
	}
	loadCmd = &cobra.Command{
		Use:   "load [name]",
		Short: "Replace the current state with a scenario preset",
		Args:  cobra.ExactArgs(1),
		Run:   runLoad, // Defined in cmd_scenarios.go
	}
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "",
		"Deadlock service base URL (default http://localhost:12240, env GRIDLOCK_SERVER)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false,
		"Output results as JSON for scripting")
	rootCmd.PersistentFlags().StringVar(&personalityLevel, "personality", "",
		"Output style: full (default, rich), standard, minimal, or machine (scripting)")

	// State inspection
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(psCmd)

	// State mutation
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(clearCmd)

	// Detection and resolution
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(visualizeCmd)
	visualizeCmd.Flags().StringVarP(&outputFile, "output", "o", "graph.png",
		"File to write the rendered PNG to")

	// Chat
	rootCmd.AddCommand(chatCmd)

	// Scenario presets
	rootCmd.AddCommand(scenariosCmd)
	rootCmd.AddCommand(loadCmd)
}
