package qrcode

import (
	"strings"
)

// ErrorCorrectionLevel is the QR redundancy tier. Higher levels survive more
// damage but leave less room for data.
//
//	L - recovers up to 7% data loss
//	M - recovers up to 15% data loss
//	Q - recovers up to 25% data loss
//	H - recovers up to 30% data loss
type ErrorCorrectionLevel string

const (
	LevelL ErrorCorrectionLevel = "L"
	LevelM ErrorCorrectionLevel = "M"
	LevelQ ErrorCorrectionLevel = "Q"
	LevelH ErrorCorrectionLevel = "H"
)

// DefaultErrorCorrectionLevel is used by renderers when no level is given.
const DefaultErrorCorrectionLevel = LevelL

// String returns the single-letter form used on the wire.
func (l ErrorCorrectionLevel) String() string {
	return string(l)
}

// IsValid reports whether l is one of L, M, Q or H. Matching is exact:
// lowercase letters are not valid levels.
func (l ErrorCorrectionLevel) IsValid() bool {
	switch l {
	case LevelL, LevelM, LevelQ, LevelH:
		return true
	default:
		return false
	}
}

// SupportedErrorCorrectionLevels returns all levels, lowest redundancy first.
func SupportedErrorCorrectionLevels() []ErrorCorrectionLevel {
	return []ErrorCorrectionLevel{LevelL, LevelM, LevelQ, LevelH}
}

// ParseErrorCorrectionLevel converts user input such as "m" or " Q " into
// a level. It is meant for flags and config files; the setters on the
// renderers take the typed value and do not normalize.
func ParseErrorCorrectionLevel(s string) (ErrorCorrectionLevel, error) {
	level := ErrorCorrectionLevel(strings.ToUpper(strings.TrimSpace(s)))
	if !level.IsValid() {
		return "", unsupportedLevel(s)
	}
	return level, nil
}

func unsupportedLevel(s string) *InvalidArgumentError {
	return invalidArgument("errorCorrectionLevel", "Unsupported error correction level %q", s)
}
