package qrcode

import (
	"context"
)

// QRCode is a request for one QR code image: the text, the pixel size and
// the Renderer that produces it.
//
// Width and height are always positive. A QRCode is not safe for concurrent
// use; give each goroutine its own.
type QRCode struct {
	text   string
	width  int
	height int

	// renderer is nil until Renderer or SetRenderer is called.
	renderer Renderer
}

// New creates a QRCode. When height is omitted it defaults to width.
// A non-positive width or height returns an *InvalidArgumentError.
func New(text string, width int, height ...int) (*QRCode, error) {
	q := &QRCode{}
	q.SetText(text)
	if err := q.SetWidth(width); err != nil {
		return nil, err
	}

	h := q.width
	if len(height) > 0 {
		h = height[0]
	}
	if err := q.SetHeight(h); err != nil {
		return nil, err
	}
	return q, nil
}

// Generate renders the QR code with the configured renderer. Validation and
// render errors are returned unchanged. Nothing is retried or cached.
func (q *QRCode) Generate(ctx context.Context) (*Image, error) {
	return q.Renderer().Render(ctx, q.text, q.width, q.height)
}

// Renderer returns the configured renderer. If none was set, a ChartRenderer
// with default settings is created once and kept.
func (q *QRCode) Renderer() Renderer {
	if q.renderer == nil {
		q.renderer = newDefaultChartRenderer()
	}
	return q.renderer
}

// SetRenderer replaces the renderer.
func (q *QRCode) SetRenderer(renderer Renderer) {
	q.renderer = renderer
}

// Text returns the text to encode.
func (q *QRCode) Text() string {
	return q.text
}

// SetText replaces the text. It is not validated here because the capacity
// depends on the renderer's error-correction level.
func (q *QRCode) SetText(text string) {
	q.text = text
}

// Width returns the image width in pixels.
func (q *QRCode) Width() int {
	return q.width
}

// SetWidth sets the image width in pixels. It must be positive.
func (q *QRCode) SetWidth(width int) error {
	if width <= 0 {
		return invalidArgument("width", "Width must be positive integer number")
	}
	q.width = width
	return nil
}

// Height returns the image height in pixels.
func (q *QRCode) Height() int {
	return q.height
}

// SetHeight sets the image height in pixels. It must be positive.
func (q *QRCode) SetHeight(height int) error {
	if height <= 0 {
		return invalidArgument("height", "Height must be positive integer number")
	}
	q.height = height
	return nil
}
