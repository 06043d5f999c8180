package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPIN  = errors.New("pin must be exactly 6 digits")
	ErrWrongPIN    = errors.New("current pin is incorrect")
	ErrPINRequired = errors.New("current pin is required")
)

const pinMaskedValue = "******"

// ValidatePIN checks the 6-digit format without hashing.
func ValidatePIN(pin string) error {
	if len(pin) != 6 {
		return ErrInvalidPIN
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return ErrInvalidPIN
		}
	}
	return nil
}

// HashPIN hashes a validated PIN with bcrypt.
func HashPIN(pin string) (string, error) {
	if err := ValidatePIN(pin); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash pin: %w", err)
	}
	return string(hash), nil
}

// VerifyPIN compares a candidate PIN against the stored hash.
func VerifyPIN(hash, pin string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		return ErrWrongPIN
	}
	return nil
}

// MaskPIN returns the masked placeholder shown to clients when a PIN is
// set, or empty when none is.
func MaskPIN(hash string) string {
	if hash == "" {
		return ""
	}
	return pinMaskedValue
}
