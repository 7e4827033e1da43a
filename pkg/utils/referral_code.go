package utils

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	referralCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	referralCodeLength   = 8
)

// GenerateReferralCode returns an 8-character uppercase alphanumeric code.
// Uniqueness is enforced by the database; callers retry on collision.
func GenerateReferralCode() (string, error) {
	return gonanoid.Generate(referralCodeAlphabet, referralCodeLength)
}
