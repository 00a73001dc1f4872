package qrcode

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks. Each typed error below reports
// itself as one of these, so callers can branch on the category without
// caring about the concrete type.
var (
	// ErrInvalidArgument is matched by *InvalidArgumentError.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrValidation is matched by *ValidationError.
	ErrValidation = errors.New("validation failed")

	// ErrRender is matched by *RenderError.
	ErrRender = errors.New("render failed")

	// ErrDecode is matched by *DecodeError.
	ErrDecode = errors.New("decode failed")
)

// InvalidArgumentError is returned synchronously by constructors and setters
// when a value is malformed (width, height, error-correction level, margin).
type InvalidArgumentError struct {
	// Argument is the name of the rejected parameter (e.g. "width").
	Argument string

	// Message is the human-readable description.
	Message string
}

// Error satisfies the error interface.
func (e *InvalidArgumentError) Error() string {
	return e.Message
}

// Is reports whether target is ErrInvalidArgument.
func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// validationMessage is the fixed message of every ValidationError.
const validationMessage = "Reached maximum number of bytes to encode"

// ValidationError is returned by renderers when the text does not fit in a
// QR code for the active error-correction level. It is raised before any
// network call is attempted.
type ValidationError struct {
	// Length is the UTF-8 byte length of the rejected text.
	Length int

	// Limit is the capacity that was exceeded.
	Limit int

	// Alphabet is the class the text was classified into.
	Alphabet Alphabet

	// Level is the error-correction level the limit was taken from.
	Level ErrorCorrectionLevel
}

// Error satisfies the error interface.
func (e *ValidationError) Error() string {
	return validationMessage
}

// Detail returns a longer description including the limit that was hit.
func (e *ValidationError) Detail() string {
	return fmt.Sprintf("%s: %d bytes of %s text exceed the limit of %d at level %s",
		validationMessage, e.Length, e.Alphabet, e.Limit, e.Level)
}

// Is reports whether target is ErrValidation.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// renderMessage is the message of a RenderError that sets no Message.
const renderMessage = "Failed to get data from chart service"

// localRenderMessage is the message of LocalRenderer failures.
const localRenderMessage = "Failed to render QR code locally"

// RenderError wraps any failure to obtain image bytes from a renderer:
// connection errors, timeouts, cancelled contexts and non-2xx responses.
type RenderError struct {
	// StatusCode is the HTTP status of the upstream response,
	// or 0 when no response was received.
	StatusCode int

	// Message replaces the default chart service wording when set.
	Message string

	// Err is the underlying cause.
	Err error
}

// Error satisfies the error interface.
func (e *RenderError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = renderMessage
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause for errors.Is/errors.As.
func (e *RenderError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRender.
func (e *RenderError) Is(target error) bool {
	return target == ErrRender
}

// DecodeError is returned lazily by Image when its bytes cannot be
// interpreted as a known image format.
type DecodeError struct {
	Err error
}

// Error satisfies the error interface.
func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to decode image data: %v", e.Err)
	}
	return "failed to decode image data"
}

// Unwrap returns the underlying codec error.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrDecode.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func invalidArgument(argument, format string, args ...any) *InvalidArgumentError {
	return &InvalidArgumentError{Argument: argument, Message: fmt.Sprintf(format, args...)}
}
