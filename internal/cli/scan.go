// Package cli: scan.go implements the "qrchart scan" command, which reads
// the text back out of a QR code image.
package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/qrchart/internal/model"
	"github.com/shinji-kodama/qrchart/internal/scan"
	"github.com/shinji-kodama/qrchart/pkg/qrcode"
)

// NewScanCommand creates the "scan" cobra command.
func NewScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan FILE",
		Short: "Decode the text stored in a QR code image",
		Long: `Decode the QR code found in an image file and print its text.

Examples:
  qrchart scan qrcode.png
  qrchart scan qrcode.png --json`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(args[0], cmd.OutOrStdout())
		},
	}
}

func runScan(path string, w io.Writer) error {
	text, err := scan.File(path)
	if err != nil {
		switch {
		case errors.Is(err, qrcode.ErrDecode):
			return err
		case errors.Is(err, fs.ErrNotExist):
			return model.WrapCLIError(model.ExitGeneralError, fmt.Sprintf("file not found: %s", path), err)
		default:
			return model.WrapCLIError(model.ExitDecode, fmt.Sprintf("no QR code found in %s", path), err)
		}
	}

	if IsJSONOutput() {
		return printJSON(w, map[string]string{"file": path, "text": text})
	}
	_, err = fmt.Fprintln(w, text)
	return err
}
