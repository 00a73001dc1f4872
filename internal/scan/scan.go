// Package scan reads QR codes back out of images with
// github.com/makiuchi-d/gozxing. The CLI uses it to check that a rendered
// image really encodes the requested text (generate --verify) and to
// decode arbitrary image files (scan).
package scan

import (
	"fmt"
	"image"
	"os"

	"github.com/makiuchi-d/gozxing"
	gozxingqr "github.com/makiuchi-d/gozxing/qrcode"

	"github.com/shinji-kodama/qrchart/pkg/qrcode"
)

// Image decodes the QR code found in a bitmap and returns its text.
func Image(img image.Image) (string, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", fmt.Errorf("creating bitmap: %w", err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_TRY_HARDER: true,
	}
	result, err := gozxingqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", fmt.Errorf("no QR code found in image: %w", err)
	}
	return result.GetText(), nil
}

// QRImage decodes the bitmap held by a rendered qrcode.Image and scans it.
// Bytes that are not an image yield a *qrcode.DecodeError.
func QRImage(img *qrcode.Image) (string, error) {
	bitmap, err := img.Decode()
	if err != nil {
		return "", err
	}
	return Image(bitmap)
}

// File reads an image file and scans it.
func File(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading image file: %w", err)
	}
	return QRImage(qrcode.NewImage(data))
}
