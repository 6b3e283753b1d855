package authsvc

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SessionSecretSize is the size of a generated signing secret in bytes.
const SessionSecretSize = 32

// GenerateSessionSecret creates a new random signing secret.
// Returns an error if the system randomness source fails.
func GenerateSessionSecret(size int) ([]byte, error) {
	secret := make([]byte, size)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	return secret, nil
}

// DecodeSessionSecret decodes a hex-encoded signing secret.
func DecodeSessionSecret(encoded string) ([]byte, error) {
	secret, err := hex.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode secret: %w", err)
	}

	return secret, nil
}

// GetSessionSecret resolves the cookie-signing secret. A non-empty explicit
// value wins. Otherwise the secret is loaded from the given file path, or
// generated and saved there if the file does not exist yet.
// Returns an error if any operation fails.
func GetSessionSecret(explicit, path string) ([]byte, error) {
	if explicit != "" {
		return []byte(explicit), nil
	}

	// Try existing secret
	buf, err := os.ReadFile(path)
	if err == nil {
		secret, err := DecodeSessionSecret(string(buf))
		if err != nil {
			return nil, fmt.Errorf("decode session secret: %w", err)
		}

		return secret, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read secret file: %w", err)
	}

	// Generate new secret
	secret, err := GenerateSessionSecret(SessionSecretSize)
	if err != nil {
		return nil, fmt.Errorf("generate session secret: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create secret dir: %w", err)
	}

	if err := os.WriteFile(path, []byte(hex.EncodeToString(secret)), 0o600); err != nil {
		return nil, fmt.Errorf("write secret file: %w", err)
	}

	return secret, nil
}
