package util

import (
	"crypto/rand"
	"encoding/hex"
)

const maxRequestIDLength = 64

// RequestID returns the caller's X-Request-ID when it is short and made of
// safe characters, otherwise a fresh random id. The value ends up in log
// lines, so quotes and control characters are never accepted.
func RequestID(supplied string) string {
	if supplied != "" && len(supplied) <= maxRequestIDLength && safeID(supplied) {
		return supplied
	}
	return NewID(8)
}

// NewID returns n random bytes hex-encoded.
func NewID(n int) string {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func safeID(value string) bool {
	for i := 0; i < len(value); i++ {
		c := value[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
		default:
			return false
		}
	}
	return true
}
