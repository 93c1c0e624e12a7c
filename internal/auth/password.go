package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordScheme names how a stored credential was produced.
type PasswordScheme string

const (
	// SchemeSHA256 is the unsalted hex digest the CRM writes for superusers.
	// It is weak and kept only so existing CRM accounts can still sign in.
	SchemeSHA256 PasswordScheme = "sha256"
	SchemeBcrypt PasswordScheme = "bcrypt"
)

// HashPassword produces a credential for storage under the given scheme.
func HashPassword(scheme PasswordScheme, password string) (string, error) {
	switch scheme {
	case SchemeBcrypt:
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return "", fmt.Errorf("hashing password: %w", err)
		}
		return string(hash), nil
	case SchemeSHA256:
		sum := sha256.Sum256([]byte(password))
		return hex.EncodeToString(sum[:]), nil
	default:
		return "", fmt.Errorf("unsupported password scheme %q", scheme)
	}
}

// SchemeOf detects the scheme of a stored hash.
func SchemeOf(hash string) PasswordScheme {
	if strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$") {
		return SchemeBcrypt
	}
	return SchemeSHA256
}

// VerifyPassword checks password against hash using the scheme the hash was stored with.
func VerifyPassword(hash, password string) bool {
	switch SchemeOf(hash) {
	case SchemeBcrypt:
		return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
	default:
		sum := sha256.Sum256([]byte(password))
		computed := hex.EncodeToString(sum[:])
		return subtle.ConstantTimeCompare([]byte(computed), []byte(strings.ToLower(hash))) == 1
	}
}
