package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinBcryptCost guards against configs that would make hashes trivially
	// crackable; bcrypt.MaxCost guards against configs that would hang login.
	MinBcryptCost = bcrypt.DefaultCost

	// DefaultTokenBytes yields 64 hex characters per issued token.
	DefaultTokenBytes = 32
)

// HashPassword returns a bcrypt hash for the provided password.
func HashPassword(password string, cost int) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password cannot be empty")
	}
	if cost < MinBcryptCost {
		cost = MinBcryptCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// VerifyPassword returns true when the password matches the stored hash.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// RandomToken produces a hex-encoded random credential string.
func RandomToken(bytes int) (string, error) {
	if bytes <= 0 {
		bytes = DefaultTokenBytes
	}
	buf := make([]byte, bytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
