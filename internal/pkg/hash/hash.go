// Package hash provides hashing utilities.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// SHA256 computes the SHA256 hash of data and returns it as a hex string.
func SHA256(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// SHA256String computes the SHA256 hash of a string.
func SHA256String(s string) string {
	return SHA256([]byte(s))
}

// SHA256Short returns the first n characters of a SHA256 hash.
func SHA256Short(data []byte, n int) string {
	h := SHA256(data)
	if n > len(h) {
		return h
	}
	return h[:n]
}

// SourceKey identifies one source file at one commit.
func SourceKey(commit, path string) string {
	return SHA256String(commit + ":" + path)
}

// EventID generates a deterministic short ID from its parts.
func EventID(parts ...string) string {
	return SHA256Short([]byte(strings.Join(parts, "\x00")), 16)
}
