package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeNationalNumber(t *testing.T) {
	got, err := NewNormalizer("es").Normalize("612 345 678")
	require.NoError(t, err)
	assert.Equal(t, "+34612345678", got)
}

func TestNormalizeKeepsInternationalPrefix(t *testing.T) {
	got, err := NewNormalizer("ES").Normalize("+1 650-253-0000")
	require.NoError(t, err)
	assert.Equal(t, "+16502530000", got)
}

func TestNormalizeRejectsGarbage(t *testing.T) {
	n := NewNormalizer("ES")
	for _, raw := range []string{"", "abc", "123"} {
		_, err := n.Normalize(raw)
		assert.ErrorIs(t, err, ErrInvalid, raw)
	}
}
