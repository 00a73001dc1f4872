package qrcode

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/disintegration/imaging"
	skipqrcode "github.com/skip2/go-qrcode"
)

// LocalRenderer encodes QR codes in-process with skip2/go-qrcode. It
// applies the same capacity check as ChartRenderer and needs no network,
// which makes it a drop-in replacement when the chart service is not
// reachable.
type LocalRenderer struct {
	settings
	logger *slog.Logger
}

// NewLocalRenderer returns a renderer with level L and margin 4 unless
// overridden by opts. Transport options are ignored.
func NewLocalRenderer(opts ...Option) (*LocalRenderer, error) {
	o, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}
	return &LocalRenderer{settings: o.settings, logger: o.logger}, nil
}

// recoveryLevels maps error-correction levels to skip2 recovery levels.
var recoveryLevels = map[ErrorCorrectionLevel]skipqrcode.RecoveryLevel{
	LevelL: skipqrcode.Low,
	LevelM: skipqrcode.Medium,
	LevelQ: skipqrcode.High,
	LevelH: skipqrcode.Highest,
}

// Render validates text, builds the module matrix, adds the margin and
// scales the result to width x height as a PNG.
func (r *LocalRenderer) Render(ctx context.Context, text string, width, height int) (*Image, error) {
	if err := ValidateText(text, r.level); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &RenderError{Message: localRenderMessage, Err: err}
	}

	code, err := skipqrcode.New(text, recoveryLevels[r.level])
	if err != nil {
		return nil, &RenderError{Message: localRenderMessage, Err: fmt.Errorf("failed to encode text: %w", err)}
	}
	// The margin is drawn below, so the library's fixed border is turned off.
	code.DisableBorder = true

	bits := code.Bitmap()
	matrix := drawMatrix(bits, r.margin)
	scaled := imaging.Resize(matrix, width, height, imaging.NearestNeighbor)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, scaled, imaging.PNG); err != nil {
		return nil, &RenderError{Message: localRenderMessage, Err: fmt.Errorf("failed to encode png: %w", err)}
	}

	r.logger.DebugContext(ctx, "rendered locally",
		slog.Int("modules", len(bits)),
		slog.Int("bytes", buf.Len()),
	)

	return &Image{raw: buf.Bytes()}, nil
}

// drawMatrix paints one pixel per module, black on white, with margin
// white modules on every side.
func drawMatrix(bits [][]bool, margin int) *image.Gray {
	size := len(bits) + 2*margin
	img := image.NewGray(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 0xff
	}
	for y, row := range bits {
		for x, dark := range row {
			if dark {
				img.Pix[img.PixOffset(x+margin, y+margin)] = 0x00
			}
		}
	}
	return img
}
