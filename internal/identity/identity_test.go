package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTrimsAndDerivesInitial(t *testing.T) {
	v, err := Parse("  ann lee ")
	require.NoError(t, err)
	assert.Equal(t, "ann lee", v.Name)
	assert.Equal(t, "A", v.Initial)
}

func TestParseKeepsCase(t *testing.T) {
	lower, err := Parse("ann")
	require.NoError(t, err)
	upper, err := Parse("Ann")
	require.NoError(t, err)
	assert.NotEqual(t, lower.Name, upper.Name)
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse("   ")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestParseRejectsLongNames(t *testing.T) {
	_, err := Parse(strings.Repeat("x", MaxNameLength+1))
	assert.ErrorIs(t, err, ErrNameTooLong)

	_, err = Parse(strings.Repeat("é", MaxNameLength))
	assert.NoError(t, err)
}

func TestInitialHandlesMultibyte(t *testing.T) {
	assert.Equal(t, "É", Initial("élodie"))
	assert.Equal(t, "?", Initial(""))
}
