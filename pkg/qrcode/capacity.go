package qrcode

import (
	"regexp"
)

// Alphabet is the character class a text is encoded in. The class decides
// which row of the capacity table applies.
type Alphabet string

const (
	// AlphabetNumeric covers texts made only of the digits 0-9.
	AlphabetNumeric Alphabet = "numeric"

	// AlphabetAlphanumeric covers digits, uppercase A-Z and " $%*+-./:".
	AlphabetAlphanumeric Alphabet = "alphanumeric"

	// AlphabetByte covers everything else, including multi-byte UTF-8.
	AlphabetByte Alphabet = "byte"
)

// String returns the class name.
func (a Alphabet) String() string {
	return string(a)
}

var (
	numericRegex      = regexp.MustCompile(`^[0-9]+$`)
	alphanumericRegex = regexp.MustCompile(`^[0-9A-Z $*%+./:\-]+$`)
)

// capacityTable holds the version 40 capacities in bytes per alphabet and
// error-correction level. It is a fixed policy, not derived from the QR
// version tables.
var capacityTable = map[Alphabet]map[ErrorCorrectionLevel]int{
	AlphabetNumeric: {
		LevelL: 7087,
		LevelM: 5594,
		LevelQ: 3991,
		LevelH: 3055,
	},
	AlphabetAlphanumeric: {
		LevelL: 4295,
		LevelM: 3390,
		LevelQ: 2418,
		LevelH: 1851,
	},
	AlphabetByte: {
		LevelL: 2953,
		LevelM: 2331,
		LevelQ: 1663,
		LevelH: 1273,
	},
}

// ClassifyAlphabet returns the narrowest alphabet that text fits in.
// The checks run numeric first, then alphanumeric, so a string of digits is
// always numeric even though it also matches the alphanumeric set.
// The empty string matches neither pattern and is classified as byte.
func ClassifyAlphabet(text string) Alphabet {
	switch {
	case numericRegex.MatchString(text):
		return AlphabetNumeric
	case alphanumericRegex.MatchString(text):
		return AlphabetAlphanumeric
	default:
		return AlphabetByte
	}
}

// Capacity returns the maximum number of bytes text may have at the given
// level, along with the alphabet it was classified into.
func Capacity(text string, level ErrorCorrectionLevel) (int, Alphabet, error) {
	if !level.IsValid() {
		return 0, "", unsupportedLevel(string(level))
	}
	alphabet := ClassifyAlphabet(text)
	return capacityTable[alphabet][level], alphabet, nil
}

// ValidateText checks the UTF-8 byte length of text against the capacity
// table. It returns a *ValidationError when the text is too long.
func ValidateText(text string, level ErrorCorrectionLevel) error {
	limit, alphabet, err := Capacity(text, level)
	if err != nil {
		return err
	}

	// len() on a Go string is the UTF-8 byte count, so a two-byte
	// character such as 'ы' counts twice.
	if length := len(text); length > limit {
		return &ValidationError{
			Length:   length,
			Limit:    limit,
			Alphabet: alphabet,
			Level:    level,
		}
	}
	return nil
}
