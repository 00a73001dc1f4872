package qrcode

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClassifyAlphabet checks the numeric → alphanumeric → byte priority.
func TestClassifyAlphabet(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Alphabet
	}{
		{"digits only", "0123456789", AlphabetNumeric},
		{"single digit", "7", AlphabetNumeric},
		{"uppercase letters", "HELLO", AlphabetAlphanumeric},
		{"all special characters", " $*%+./:-", AlphabetAlphanumeric},
		{"url in uppercase", "HTTPS://EXAMPLE.COM/A-B", AlphabetAlphanumeric},
		{"digits with space", "123 456", AlphabetAlphanumeric},
		{"lowercase letters", "hello", AlphabetByte},
		{"mixed case", "TestMessage", AlphabetByte},
		{"cyrillic", "ыыы", AlphabetByte},
		{"unsupported punctuation", "HELLO!", AlphabetByte},
		{"newline", "123\n", AlphabetByte},
		{"empty string", "", AlphabetByte},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyAlphabet(tt.text))
		})
	}
}

// capacityCases lists the longest valid text for every (alphabet, level)
// pair. Appending one more digit must push each of them over the limit.
func capacityCases() []struct {
	name  string
	text  string
	level ErrorCorrectionLevel
} {
	return []struct {
		name  string
		text  string
		level ErrorCorrectionLevel
	}{
		{"numeric L", strings.Repeat("1", 7087), LevelL},
		{"numeric M", strings.Repeat("1", 5594), LevelM},
		{"numeric Q", strings.Repeat("1", 3991), LevelQ},
		{"numeric H", strings.Repeat("1", 3055), LevelH},

		{"alphanumeric L", strings.Repeat("W", 4295), LevelL},
		{"alphanumeric M", strings.Repeat("W", 3390), LevelM},
		{"alphanumeric Q", strings.Repeat("W", 2418), LevelQ},
		{"alphanumeric H", strings.Repeat("W", 1851), LevelH},

		// 'ы' is two bytes in UTF-8, so k letters plus one digit is 2k+1 bytes.
		{"byte L", strings.Repeat("ы", 1476) + "1", LevelL},
		{"byte M", strings.Repeat("ы", 1165) + "1", LevelM},
		{"byte Q", strings.Repeat("ы", 831) + "1", LevelQ},
		{"byte H", strings.Repeat("ы", 636) + "1", LevelH},
	}
}

// TestValidateText_Boundaries verifies that texts exactly at the limit pass
// and one byte more fails with a ValidationError.
func TestValidateText_Boundaries(t *testing.T) {
	for _, tt := range capacityCases() {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, ValidateText(tt.text, tt.level))

			err := ValidateText(tt.text+"1", tt.level)
			require.Error(t, err)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.True(t, errors.Is(err, ErrValidation))
			assert.Equal(t, "Reached maximum number of bytes to encode", err.Error())
			assert.Equal(t, len(tt.text)+1, vErr.Length)
			assert.Equal(t, len(tt.text), vErr.Limit)
			assert.Equal(t, tt.level, vErr.Level)
		})
	}
}

// TestValidateText_ByteLength verifies that multi-byte characters count
// by their encoded length, not as single characters.
func TestValidateText_ByteLength(t *testing.T) {
	// 1477 characters fit easily by count, but take 2954 bytes.
	text := strings.Repeat("ы", 1477)

	err := ValidateText(text, LevelL)
	require.Error(t, err)

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, 2954, vErr.Length)
	assert.Equal(t, AlphabetByte, vErr.Alphabet)
	assert.Contains(t, vErr.Detail(), "2954 bytes of byte text")
}

// TestCapacity verifies the returned limit and class, and that invalid
// levels are rejected.
func TestCapacity(t *testing.T) {
	limit, alphabet, err := Capacity("12345", LevelH)
	require.NoError(t, err)
	assert.Equal(t, 3055, limit)
	assert.Equal(t, AlphabetNumeric, alphabet)

	limit, alphabet, err = Capacity("ABC", LevelQ)
	require.NoError(t, err)
	assert.Equal(t, 2418, limit)
	assert.Equal(t, AlphabetAlphanumeric, alphabet)

	limit, alphabet, err = Capacity("abc", LevelM)
	require.NoError(t, err)
	assert.Equal(t, 2331, limit)
	assert.Equal(t, AlphabetByte, alphabet)

	_, _, err = Capacity("abc", ErrorCorrectionLevel("X"))
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

// TestValidateText_EmptyText verifies that an empty text is accepted.
func TestValidateText_EmptyText(t *testing.T) {
	for _, level := range SupportedErrorCorrectionLevels() {
		assert.NoError(t, ValidateText("", level))
	}
}
