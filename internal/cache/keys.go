package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GenerateKey returns the SHA256 hex digest of s
func GenerateKey(s string) string {
	hash := sha256.Sum256([]byte(s))
	return hex.EncodeToString(hash[:])
}

// KeyPrefix constants for different cache types
const (
	PrefixResolved = "resolved"
)

// ResolvedKey generates the cache key for a manifest resolved against a
// target. Editing the manifest text or changing the target yields a new key.
func ResolvedKey(name string, text []byte, fingerprint string) string {
	var b strings.Builder
	b.WriteString(PrefixResolved)
	b.WriteByte(':')
	b.WriteString(name)
	b.WriteByte(':')
	b.WriteString(GenerateKey(string(text)))
	b.WriteByte(':')
	b.WriteString(fingerprint)
	return b.String()
}
