// Package identity validates the self-reported display name a visitor sends
// with likes and comments. A Visitor is an attribution label, never a
// credential.
package identity

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxNameLength is the longest display name accepted, in runes.
const MaxNameLength = 64

var (
	ErrEmptyName   = errors.New("visitor name is required")
	ErrNameTooLong = errors.New("visitor name is too long")
)

// Visitor is an unauthenticated caller identified by the name it supplied.
type Visitor struct {
	Name    string
	Initial string
}

// Parse normalizes a claimed display name. Only surrounding whitespace is
// removed; case is kept because moderation matches names exactly.
func Parse(name string) (Visitor, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return Visitor{}, ErrEmptyName
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return Visitor{}, ErrNameTooLong
	}
	return Visitor{Name: trimmed, Initial: Initial(trimmed)}, nil
}

// Initial returns the upper-cased first rune of name, or "?" for an empty name.
func Initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}
