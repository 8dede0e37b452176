package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// SecretLen is the number of random bytes in a generated signing secret.
const SecretLen = 32

// GenerateSecret returns a hex-encoded random secret suitable for SECRET_KEY.
func GenerateSecret() (string, error) {
	buf := make([]byte, SecretLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
