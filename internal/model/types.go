// Package model defines the CLI-level types for qrchart.
//
// The QR code domain itself (QRCode, Renderer, Image, capacity table) lives
// in pkg/qrcode so that it can be imported by other programs. This package
// holds what only the command-line tool and the HTTP surface need: the
// renderer selection, structured command results, and the exit-code
// carrying error type used by the cli package.
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shinji-kodama/qrchart/pkg/qrcode"
)

// RendererKind selects which pkg/qrcode renderer a command uses.
type RendererKind string

const (
	// RendererChart posts the text to the remote chart service.
	// This is the default and matches qrcode.QRCode's lazy renderer.
	RendererChart RendererKind = "chart"

	// RendererLocal encodes the QR code in-process without network access.
	RendererLocal RendererKind = "local"
)

// String returns the string representation of RendererKind.
func (k RendererKind) String() string {
	return string(k)
}

// IsValid checks whether the RendererKind value is one of the
// predefined renderer kinds.
func (k RendererKind) IsValid() bool {
	switch k {
	case RendererChart, RendererLocal:
		return true
	default:
		return false
	}
}

// ParseRendererKind converts a string to a RendererKind.
// Returns an error if the string does not match any known renderer.
func ParseRendererKind(s string) (RendererKind, error) {
	kind := RendererKind(strings.ToLower(strings.TrimSpace(s)))
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid renderer: %q (valid: chart, local)", s)
	}
	return kind, nil
}

// GenerateResult describes one generated image. It is printed by the
// generate command in JSON mode and returned by nothing else.
type GenerateResult struct {
	// Output is the file the image was written to, or "-" for stdout.
	Output string `json:"output"`

	// Bytes is the size of the raw image data.
	Bytes int `json:"bytes"`

	// Width and Height are the requested size in pixels.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Level and Margin are the renderer settings used.
	Level  string `json:"level"`
	Margin int    `json:"margin"`

	// Renderer is "chart" or "local".
	Renderer RendererKind `json:"renderer"`

	// Format is the detected image format. Empty when the returned bytes
	// could not be decoded (the chart service does not guarantee an image).
	Format string `json:"format,omitempty"`

	// Verified is set when --verify decoded the image back to the input text.
	Verified bool `json:"verified,omitempty"`
}

// CapacityEntry is the limit for one error-correction level.
type CapacityEntry struct {
	Level string `json:"level"`
	Limit int    `json:"limit"`
	Fits  bool   `json:"fits"`
}

// CapacityReport tells how a text is classified and whether it fits at
// each error-correction level.
type CapacityReport struct {
	// Bytes is the UTF-8 byte length of the text.
	Bytes int `json:"bytes"`

	// Characters is the number of Unicode code points in the text.
	Characters int `json:"characters"`

	// Alphabet is numeric, alphanumeric or byte.
	Alphabet string `json:"alphabet"`

	// Levels lists L, M, Q, H in that order.
	Levels []CapacityEntry `json:"levels"`
}

// BuildCapacityReport evaluates text against every error-correction level.
func BuildCapacityReport(text string) CapacityReport {
	report := CapacityReport{
		Bytes:      len(text),
		Characters: len([]rune(text)),
		Alphabet:   qrcode.ClassifyAlphabet(text).String(),
	}
	for _, level := range qrcode.SupportedErrorCorrectionLevels() {
		// Capacity only fails on invalid levels, which cannot happen here.
		limit, _, _ := qrcode.Capacity(text, level)
		report.Levels = append(report.Levels, CapacityEntry{
			Level: level.String(),
			Limit: limit,
			Fits:  len(text) <= limit,
		})
	}
	return report
}

// ExitCode defines standard CLI exit codes. These codes allow scripts and
// CI systems to programmatically determine the outcome of a command.
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred.
	ExitGeneralError ExitCode = 1

	// ExitInvalidArgument indicates a malformed flag or argument
	// (width, height, level, margin, renderer).
	ExitInvalidArgument ExitCode = 2

	// ExitValidation indicates the text does not fit in a QR code at the
	// requested error-correction level.
	ExitValidation ExitCode = 3

	// ExitRender indicates the renderer could not produce image bytes,
	// typically because the chart service was unreachable or returned
	// a non-2xx status.
	ExitRender ExitCode = 4

	// ExitDecode indicates image bytes could not be decoded, or a QR code
	// could not be found in them.
	ExitDecode ExitCode = 5

	// ExitConfig indicates the configuration file or environment could not
	// be loaded or failed validation.
	ExitConfig ExitCode = 6
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}

// FromLibraryError maps a pkg/qrcode error onto a CLIError with the
// matching exit code. Errors that are already CLIErrors are returned as is,
// and nil maps to nil.
//
// The mapping relies on the sentinel errors in pkg/qrcode, so wrapped
// errors (fmt.Errorf("...: %w", err)) are classified correctly too.
func FromLibraryError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	switch {
	case errors.Is(err, qrcode.ErrInvalidArgument):
		return WrapCLIError(ExitInvalidArgument, "invalid argument", err)
	case errors.Is(err, qrcode.ErrValidation):
		return WrapCLIError(ExitValidation, "text does not fit in a QR code", err)
	case errors.Is(err, qrcode.ErrRender):
		return WrapCLIError(ExitRender, "failed to render QR code", err)
	case errors.Is(err, qrcode.ErrDecode):
		return WrapCLIError(ExitDecode, "failed to decode image", err)
	default:
		return WrapCLIError(ExitGeneralError, "unexpected error", err)
	}
}
