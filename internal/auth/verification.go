package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

const verificationTokenBytes = 32

// NewVerificationToken returns a random url-safe token and the hash that is
// persisted in its place.
func NewVerificationToken() (raw string, hash string, err error) {
	b := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	raw = hex.EncodeToString(b)
	return raw, HashToken(raw), nil
}

func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
