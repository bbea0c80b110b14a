package core

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher turns plaintext passwords into opaque stored hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// SHA256Hasher stores the hex encoded SHA-256 digest of the password.
type SHA256Hasher struct{}

// Hash implements PasswordHasher.
func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:]), nil
}

// Verify implements PasswordHasher.
func (h SHA256Hasher) Verify(hash, password string) bool {
	want, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(hash), []byte(want)) == 1
}

// BcryptHasher stores bcrypt hashes at Cost.
type BcryptHasher struct {
	Cost int
}

// Hash implements PasswordHasher.
func (h BcryptHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	out, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(out), nil
}

// Verify implements PasswordHasher.
func (BcryptHasher) Verify(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewPasswordHasher returns the hasher registered under name: sha256 (default) or bcrypt.
func NewPasswordHasher(name string, cost int) (PasswordHasher, error) {
	switch name {
	case "", "sha256":
		return SHA256Hasher{}, nil
	case "bcrypt":
		if cost != 0 && (cost < bcrypt.MinCost || cost > bcrypt.MaxCost) {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
		}
		return BcryptHasher{Cost: cost}, nil
	default:
		return nil, errors.New("unknown password hasher " + name)
	}
}
