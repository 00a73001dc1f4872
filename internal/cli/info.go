// Package cli: info.go implements the "qrchart info" command, which prints
// the dimensions and format of an image file.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/qrchart/internal/model"
	"github.com/shinji-kodama/qrchart/pkg/qrcode"
)

// infoJSON is the JSON output structure of the info command.
type infoJSON struct {
	File string `json:"file"`
	qrcode.ImageInfo
	Bytes int `json:"bytes"`
}

// NewInfoCommand creates the "info" cobra command.
func NewInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info FILE",
		Short: "Show the dimensions and format of an image",
		Long: `Show the width, height and format of an image file, such as one
written by "qrchart generate".

Examples:
  qrchart info qrcode.png
  qrchart info qrcode.png --json`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(args[0], cmd.OutOrStdout())
		},
	}
}

func runInfo(path string, w io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to read %s", path), err)
	}

	img := qrcode.NewImage(data)
	info, err := img.Info()
	if err != nil {
		return err
	}
	VerboseLog("Decoded header of %s", path)

	if IsJSONOutput() {
		return printJSON(w, infoJSON{File: path, ImageInfo: info, Bytes: img.Len()})
	}
	_, err = fmt.Fprintf(w, "%s: %s image, %dx%d, %d bytes\n",
		path, info.Format, info.Width, info.Height, img.Len())
	return err
}
