// Package password represents a plaintext credential and its stored form.
//
// The stored form is hex(salt) + ":" + hex(key) where key is derived with
// scrypt, kept compatible with hashes already present in the users table.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/scrypt"
)

// MinLength is the shortest password accepted.
const MinLength = 6

// scrypt parameters.
const (
	costN   = 16384
	blockR  = 8
	threadP = 1
	keyLen  = 64
	saltLen = 16
)

// Password represents a plaintext password that passed the policy checks.
type Password struct {
	value string
}

// Parse checks the value against the password policy.
func Parse(value string) (Password, error) {
	if len(value) < MinLength {
		return Password{}, fmt.Errorf("password must be at least %d characters", MinLength)
	}

	return Password{value}, nil
}

// MustParse parses the value and panics on error.
func MustParse(value string) Password {
	p, err := Parse(value)
	if err != nil {
		panic(err)
	}

	return p
}

// String returns the plaintext. Keep it out of logs.
func (p Password) String() string {
	return p.value
}

// MarshalText redacts the value.
func (p Password) MarshalText() ([]byte, error) {
	return []byte("********"), nil
}

// Hash derives the stored form of the password with a fresh salt.
func (p Password) Hash() (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("salt: %w", err)
	}

	key, err := derive(p.value, salt)
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(salt) + ":" + hex.EncodeToString(key), nil
}

// Verify reports whether plain matches the stored form. A stored value with
// a missing part or bad hex never matches.
func Verify(plain string, stored string) bool {
	saltHex, keyHex, ok := strings.Cut(stored, ":")
	if !ok || saltHex == "" || keyHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	want, err := hex.DecodeString(keyHex)
	if err != nil {
		return false
	}

	got, err := scrypt.Key([]byte(plain), salt, costN, blockR, threadP, len(want))
	if err != nil {
		return false
	}

	return subtle.ConstantTimeCompare(got, want) == 1
}

func derive(plain string, salt []byte) ([]byte, error) {
	key, err := scrypt.Key([]byte(plain), salt, costN, blockR, threadP, keyLen)
	if err != nil {
		return nil, fmt.Errorf("scrypt: %w", err)
	}

	return key, nil
}
