package utils

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordEncoder produces and checks one-way password hashes.
type PasswordEncoder interface {
	Encode(raw string) (string, error)
	Matches(raw, encoded string) bool
}

// BcryptEncoder is a PasswordEncoder backed by bcrypt.
type BcryptEncoder struct {
	cost int
}

// NewBcryptEncoder creates an encoder with the given cost; out-of-range
// costs fall back to bcrypt.DefaultCost.
func NewBcryptEncoder(cost int) *BcryptEncoder {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptEncoder{cost: cost}
}

// Encode hashes raw.
func (e *BcryptEncoder) Encode(raw string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(raw), e.cost)
	return string(bytes), err
}

// Matches compares raw with a hash produced by Encode.
func (e *BcryptEncoder) Matches(raw, encoded string) bool {
	return CheckPassword(raw, encoded)
}

// HashPassword hashes a plain password using bcrypt at the default cost.
func HashPassword(password string) (string, error) {
	return NewBcryptEncoder(bcrypt.DefaultCost).Encode(password)
}

// CheckPassword compares plain password with hashed password.
func CheckPassword(plain, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}
