package llm

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/awnumar/memguard"
)

// memguardInitOnce ensures interrupt handling is armed exactly once.
var memguardInitOnce sync.Once

func initMemguard() {
	memguardInitOnce.Do(func() {
		memguard.CatchInterrupt()
	})
}

// loadAPIKey resolves a secret from the environment or a mounted secrets file
// and seals it in an encrypted enclave. The environment copy is cleared so the
// plaintext key does not linger in the process environment.
func loadAPIKey(envVar, secretPath string) (*memguard.Enclave, error) {
	initMemguard()

	if raw := os.Getenv(envVar); raw != "" {
		os.Unsetenv(envVar)
		return memguard.NewBufferFromBytes([]byte(strings.TrimSpace(raw))).Seal(), nil
	}

	content, err := os.ReadFile(secretPath)
	if err != nil {
		slog.Error("API key not set and secret not found", "env", envVar, "path", secretPath)
		return nil, fmt.Errorf("%s environment variable not set", envVar)
	}
	slog.Info("Read API key from mounted secret", "env", envVar, "path", secretPath)
	return memguard.NewBufferFromBytes([]byte(strings.TrimSpace(string(content)))).Seal(), nil
}

// withAPIKey opens the enclave, hands the plaintext to fn, and wipes the
// unsealed buffer when fn returns. The key string is backed by locked memory
// and must not escape fn.
func withAPIKey(enclave *memguard.Enclave, fn func(key string) error) error {
	buf, err := enclave.Open()
	if err != nil {
		return fmt.Errorf("failed to open API key enclave: %w", err)
	}
	defer buf.Destroy()
	return fn(buf.String())
}

// PurgeSecureMemory wipes all enclaves and locked buffers. Call during
// graceful shutdown.
func PurgeSecureMemory() {
	memguard.Purge()
	slog.Info("Purged all secure memory")
}
