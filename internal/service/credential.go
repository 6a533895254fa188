package service

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Stored credentials are "<scheme>$<payload>". Only bcrypt is written;
// the other forms are read once and upgraded on the next good login.
const (
	schemeBcrypt = "bcrypt"
	schemeSHA256 = "sha256"
)

// bcrypt only reads the first 72 bytes and refuses longer input.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

var bcryptCost = bcrypt.DefaultCost

// ValidatePassword checks the length bounds of a new password.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidInput, MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return fmt.Errorf("%w: password must be at most %d bytes", ErrInvalidInput, MaxPasswordLength)
	}
	return nil
}

// HashPassword returns the current-scheme credential for password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return schemeBcrypt + "$" + string(h), nil
}

// VerifyPassword checks password against stored. upgrade is true when the
// match came from a legacy format and the caller should store a fresh hash.
func VerifyPassword(stored, password string) (ok, upgrade bool) {
	if stored == "" || password == "" {
		return false, false
	}

	switch {
	case strings.HasPrefix(stored, schemeBcrypt+"$"):
		hash := strings.TrimPrefix(stored, schemeBcrypt+"$")
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil, false

	case strings.HasPrefix(stored, schemeSHA256+"$"):
		parts := strings.SplitN(stored, "$", 3)
		if len(parts) != 3 {
			return false, false
		}
		want, err := hex.DecodeString(parts[2])
		if err != nil {
			return false, false
		}
		sum := sha256.Sum256([]byte(parts[1] + password))
		return subtle.ConstantTimeCompare(sum[:], want) == 1, true

	case isBareBcrypt(stored):
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil, true
	}

	// anything else, plaintext included, never matches
	return false, false
}

func isBareBcrypt(s string) bool {
	return strings.HasPrefix(s, "$2a$") || strings.HasPrefix(s, "$2b$") || strings.HasPrefix(s, "$2y$")
}
