package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shinji-kodama/qrchart/pkg/qrcode"
)

// renderLocal produces a real QR code PNG without network access.
func renderLocal(t *testing.T, text string) *qrcode.Image {
	t.Helper()
	r, err := qrcode.NewLocalRenderer(qrcode.WithErrorCorrectionLevel(qrcode.LevelM))
	require.NoError(t, err)

	img, err := r.Render(context.Background(), text, 300, 300)
	require.NoError(t, err)
	return img
}

// TestQRImage_RoundTrip verifies that locally rendered codes scan back to
// the original text, including multi-byte content.
func TestQRImage_RoundTrip(t *testing.T) {
	tests := []string{
		"12345678901234567890",
		"HELLO WORLD",
		"https://example.com/path?q=1",
	}

	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			got, err := QRImage(renderLocal(t, text))
			require.NoError(t, err)
			assert.Equal(t, text, got)
		})
	}
}

func TestQRImage_NotAnImage(t *testing.T) {
	_, err := QRImage(qrcode.NewImage([]byte("test")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, qrcode.ErrDecode))
}

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "code.png")
	require.NoError(t, os.WriteFile(path, renderLocal(t, "TrekkSoft").Bytes(), 0o644))

	got, err := File(path)
	require.NoError(t, err)
	assert.Equal(t, "TrekkSoft", got)

	_, err = File(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
