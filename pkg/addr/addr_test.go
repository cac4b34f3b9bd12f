package addr

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Run("lowercases the hex digits", func(t *testing.T) {
		assert.Equal(t,
			"0xabcdef1234567890abcdef1234567890abcdef12",
			Normalize("0xABCDEF1234567890abcdef1234567890ABCDEF12"),
		)
	})

	t.Run("leaves invalid input untouched", func(t *testing.T) {
		for _, input := range []string{"", "bogus", "0X1111111111111111111111111111111111111111", "0x123"} {
			assert.Equal(t, input, Normalize(input))
		}
	})
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("0x1111111111111111111111111111111111111111"))
	assert.True(t, IsValid("0xABCDEF1234567890abcdef1234567890ABCDEF12"))

	assert.False(t, IsValid(""))
	assert.False(t, IsValid("1111111111111111111111111111111111111111"))
	assert.False(t, IsValid("0x11111111111111111111111111111111111111"))
	assert.False(t, IsValid("0x111111111111111111111111111111111111111111"))
	assert.False(t, IsValid("0xzz11111111111111111111111111111111111111"))
}

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero(Zero))
	assert.True(t, IsZero("0x0000000000000000000000000000000000000000"))

	assert.False(t, IsZero("0x0000000000000000000000000000000000000001"))
	assert.False(t, IsZero("bogus"))
}

func TestValidate(t *testing.T) {
	t.Run("returns the normalized address", func(t *testing.T) {
		normalized, err := Validate("0xABCDEF1234567890abcdef1234567890ABCDEF12")
		require.NoError(t, err)
		assert.Equal(t, "0xabcdef1234567890abcdef1234567890abcdef12", normalized)
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, input := range []string{"", "bogus", "0x123"} {
			_, err := Validate(input)
			assert.Error(t, err)
		}
	})
}

func TestGetBech32Address(t *testing.T) {
	t.Run("derives a zil address", func(t *testing.T) {
		bech32Address := GetBech32Address("0x1111111111111111111111111111111111111111")
		assert.True(t, strings.HasPrefix(bech32Address, "zil1"))
	})

	t.Run("returns empty for bad input", func(t *testing.T) {
		assert.Equal(t, "", GetBech32Address(""))
		assert.Equal(t, "", GetBech32Address("bogus"))
	})
}
