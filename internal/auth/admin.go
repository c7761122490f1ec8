package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

var ErrNoSecret = errors.New("admin secret not configured")

// Gate authorizes admin calls against a single shared secret. It holds no
// session state; every call re-supplies the secret.
type Gate struct {
	digest []byte
	hash   []byte
}

// NewGate builds a gate from a plain secret or a bcrypt hash of it. The hash
// wins when both are set. With neither, every call is rejected.
func NewGate(secret, bcryptHash string) *Gate {
	g := &Gate{}
	if hash := strings.TrimSpace(bcryptHash); hash != "" {
		g.hash = []byte(hash)
		return g
	}
	if secret != "" {
		g.digest = digest(secret)
	}
	return g
}

// Configured reports whether any secret can ever match.
func (g *Gate) Configured() bool {
	return len(g.hash) > 0 || len(g.digest) > 0
}

// Authorize reports whether supplied matches the admin secret. A mismatch is
// an ordinary outcome, not an error.
func (g *Gate) Authorize(supplied string) bool {
	if g == nil || supplied == "" {
		return false
	}
	if len(g.hash) > 0 {
		return bcrypt.CompareHashAndPassword(g.hash, []byte(supplied)) == nil
	}
	if len(g.digest) == 0 {
		return false
	}
	// Digests have a fixed length, so the compare does not leak the secret's.
	return hmac.Equal(digest(supplied), g.digest)
}

// HashSecret returns a bcrypt hash suitable for PORTFOLIO_ADMIN_SECRET_BCRYPT.
func HashSecret(secret string) (string, error) {
	if secret == "" {
		return "", ErrNoSecret
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash secret: %w", err)
	}
	return string(hash), nil
}

func digest(value string) []byte {
	sum := sha256.Sum256([]byte(value))
	return sum[:]
}
