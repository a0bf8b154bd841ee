package domain

import (
	"crypto/rand"
	"encoding/hex"
)

// NewClientSecret returns a fresh 12 character hex client secret.
func NewClientSecret() string {
	return NewToken(6)
}

// NewToken returns n random bytes hex encoded.
func NewToken(n int) string {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
