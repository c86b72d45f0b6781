package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashIdentity returns a filesystem-safe identifier for an identity string.
func HashIdentity(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
