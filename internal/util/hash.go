package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns the hex-encoded sha256 digest of the given text.
// Interpretation rows carry the hash of their originating event content so
// a later pass can tell whether an event was edited after interpretation.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
