package qrcode

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Codec inspects and decodes encoded image bytes. Image delegates to a Codec
// instead of decoding itself, so the set of supported formats is decided
// outside this package.
type Codec interface {
	// DecodeConfig returns the dimensions and format name without decoding
	// the full bitmap.
	DecodeConfig(r io.Reader) (image.Config, string, error)

	// Decode returns the full in-memory bitmap.
	Decode(r io.Reader) (image.Image, error)
}

// defaultCodec uses the formats registered with the image package
// (PNG, JPEG, GIF, BMP, TIFF, WebP) and imaging for decoding.
type defaultCodec struct{}

func (defaultCodec) DecodeConfig(r io.Reader) (image.Config, string, error) {
	return image.DecodeConfig(r)
}

func (defaultCodec) Decode(r io.Reader) (image.Image, error) {
	return imaging.Decode(r)
}

// DefaultCodec is the Codec used by images created without one.
var DefaultCodec Codec = defaultCodec{}

// ImageInfo describes encoded image data.
type ImageInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
}

// Image holds the raw bytes returned by a Renderer. The bytes are not
// validated when the Image is built; errors surface only when Info or
// Decode is called.
type Image struct {
	raw   []byte
	codec Codec
}

// NewImage wraps a copy of raw using DefaultCodec.
func NewImage(raw []byte) *Image {
	return NewImageWithCodec(raw, nil)
}

// NewImageWithCodec wraps a copy of raw. A nil codec means DefaultCodec.
func NewImageWithCodec(raw []byte, codec Codec) *Image {
	return &Image{
		raw:   bytes.Clone(raw),
		codec: codec,
	}
}

func (i *Image) getCodec() Codec {
	if i.codec == nil {
		return DefaultCodec
	}
	return i.codec
}

// Info returns the dimensions and format of the image.
func (i *Image) Info() (ImageInfo, error) {
	cfg, format, err := i.getCodec().DecodeConfig(bytes.NewReader(i.raw))
	if err != nil {
		return ImageInfo{}, &DecodeError{Err: err}
	}
	return ImageInfo{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// Decode returns the decoded bitmap.
func (i *Image) Decode() (image.Image, error) {
	img, err := i.getCodec().Decode(bytes.NewReader(i.raw))
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return img, nil
}

// Bytes returns a copy of the raw bytes.
func (i *Image) Bytes() []byte {
	return bytes.Clone(i.raw)
}

// Len returns the number of raw bytes.
func (i *Image) Len() int {
	return len(i.raw)
}

// String returns the raw bytes unchanged, as a string.
func (i *Image) String() string {
	return string(i.raw)
}

// WriteTo writes the raw bytes to w. It implements io.WriterTo.
func (i *Image) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(i.raw)
	return int64(n), err
}
