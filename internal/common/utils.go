package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString generates a random hexadecimal string of the given size.
// The size parameter specifies the number of random bytes, so the resulting
// string is twice as long.
//
// It returns an error if the random number generator fails.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray overwrites the contents of b with zeros. It is used to drop
// passwords read from the terminal as soon as they are no longer needed.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	if b == nil {
		return
	}
	for i := range b {
		b[i] = 0
	}
}

// BearerToken extracts the raw token from an Authorization header value.
// It reports false unless the value has the exact "Bearer <token>" form.
func BearerToken(value string) (string, bool) {
	if len(value) <= len(BearerPrefix) || value[:len(BearerPrefix)] != BearerPrefix {
		return "", false
	}
	return value[len(BearerPrefix):], true
}
