// Package cli: generate.go implements the "qrchart generate" command.
//
// The generate command renders TEXT as a QR code image and writes it to a
// file or to stdout. Width, height, error-correction level, margin and
// renderer default to the configuration and can be overridden per call.
// With --verify the image is scanned back and compared with TEXT.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/qrchart/internal/config"
	"github.com/shinji-kodama/qrchart/internal/model"
	"github.com/shinji-kodama/qrchart/internal/scan"
	"github.com/shinji-kodama/qrchart/pkg/qrcode"
)

// stdoutPath selects stdout as the output destination.
const stdoutPath = "-"

// generateFlags holds the flag values for the generate command.
type generateFlags struct {
	width    int
	height   int
	level    string
	margin   int
	output   string
	renderer string
	verify   bool
}

// generateOptions are the fully resolved settings for one generate run:
// configuration values with any flags the user set applied on top.
type generateOptions struct {
	render renderSettings
	width  int
	height int
	output string
	verify bool
}

// NewGenerateCommand creates the "generate" cobra command.
func NewGenerateCommand() *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate TEXT",
		Short: "Render text as a QR code image",
		Long: `Render TEXT as a QR code image.

The text is checked against the capacity of a QR code at the selected
error-correction level before the chart service is contacted.

Examples:
  qrchart generate "https://example.com" -o example.png
  qrchart generate "HELLO" -W 200 -H 100 -l Q -m 0 -o - > hello.png
  qrchart generate "offline" --renderer local --verify`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := resolveGenerateOptions(appConfig, flags, cmd.Flags().Changed)
			if err != nil {
				return err
			}
			return runGenerate(cmd.Context(), args[0], opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVarP(&flags.width, "width", "W", 0, "Image width in pixels (default from config: 300)")
	cmd.Flags().IntVarP(&flags.height, "height", "H", 0, "Image height in pixels (default: same as width)")
	cmd.Flags().StringVarP(&flags.level, "level", "l", "", "Error-correction level: L, M, Q, H (default from config: L)")
	cmd.Flags().IntVarP(&flags.margin, "margin", "m", 0, "Quiet-zone width in modules (default from config: 4)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "qrcode.png", `Output file, or "-" for stdout`)
	cmd.Flags().StringVar(&flags.renderer, "renderer", "", "Renderer: chart or local (default from config: chart)")
	cmd.Flags().BoolVar(&flags.verify, "verify", false, "Scan the generated image and check it encodes TEXT")

	return cmd
}

// resolveGenerateOptions applies the flags the user set (as reported by
// changed) on top of cfg. Flags left at their zero value do not override
// the configuration.
func resolveGenerateOptions(cfg *config.Config, flags *generateFlags, changed func(string) bool) (generateOptions, error) {
	opts := generateOptions{
		render: renderSettings{
			kind:   cfg.RendererKind(),
			level:  cfg.ErrorCorrectionLevel(),
			margin: cfg.Margin,
		},
		width:  cfg.Width,
		height: cfg.Height,
		output: flags.output,
		verify: flags.verify,
	}

	if changed("width") {
		opts.width = flags.width
		// An explicit width without an explicit height yields a square
		// image, like qrcode.New.
		if !changed("height") {
			opts.height = flags.width
		}
	}
	if changed("height") {
		opts.height = flags.height
	}
	if opts.height == 0 {
		opts.height = opts.width
	}

	if changed("level") {
		level, err := qrcode.ParseErrorCorrectionLevel(flags.level)
		if err != nil {
			return opts, err
		}
		opts.render.level = level
	}
	if changed("margin") {
		opts.render.margin = flags.margin
	}
	if changed("renderer") {
		kind, err := model.ParseRendererKind(flags.renderer)
		if err != nil {
			return opts, model.WrapCLIError(model.ExitInvalidArgument, "invalid --renderer flag", err)
		}
		opts.render.kind = kind
	}

	return opts, nil
}

// runGenerate renders text, writes the image and reports the result.
func runGenerate(ctx context.Context, text string, opts generateOptions, stdout io.Writer) error {
	// Step 1: Build the QR code value object. This rejects non-positive
	// sizes before anything else happens.
	code, err := qrcode.New(text, opts.width, opts.height)
	if err != nil {
		return err
	}

	// Step 2: Build the renderer. Invalid levels and margins are rejected
	// here.
	var client qrcode.HTTPDoer
	if opts.render.kind == model.RendererChart {
		c, err := newHTTPClient(appConfig)
		if err != nil {
			return err
		}
		client = c
	}
	renderer, err := newRenderer(appConfig, client, opts.render, appLogger)
	if err != nil {
		return err
	}
	code.SetRenderer(renderer)

	VerboseLog("Rendering %d bytes of text at %dx%d (level %s, margin %d, renderer %s)",
		len(text), opts.width, opts.height, opts.render.level, opts.render.margin, opts.render.kind)

	// Step 3: Render. Capacity is checked before any network call.
	img, err := code.Generate(ctx)
	if err != nil {
		return err
	}

	result := model.GenerateResult{
		Output:   opts.output,
		Bytes:    img.Len(),
		Width:    opts.width,
		Height:   opts.height,
		Level:    opts.render.level.String(),
		Margin:   opts.render.margin,
		Renderer: opts.render.kind,
	}

	// Step 4: Detect the format. The chart service is not guaranteed to
	// answer with an image, so a decode failure is only logged unless
	// --verify needs the bitmap.
	if info, err := img.Info(); err == nil {
		result.Format = info.Format
	} else {
		VerboseLog("Response is not a decodable image: %v", err)
	}

	// Step 5: Optionally scan the image back and compare.
	if opts.verify {
		decoded, err := scan.QRImage(img)
		if err != nil {
			return model.WrapCLIError(model.ExitDecode, "verification failed", err)
		}
		if decoded != text {
			return model.NewCLIError(model.ExitDecode,
				fmt.Sprintf("verification failed: image encodes %q", decoded))
		}
		result.Verified = true
	}

	// Step 6: Write the image.
	if err := writeImage(img, opts.output, stdout); err != nil {
		return err
	}

	// Stdout carries the image itself when -o - is used, so the summary
	// is only printed for file output.
	if opts.output == stdoutPath {
		return nil
	}
	return printGenerateResult(stdout, result)
}

// writeImage writes img to path, or to stdout when path is "-".
func writeImage(img *qrcode.Image, path string, stdout io.Writer) error {
	if path == stdoutPath {
		if _, err := img.WriteTo(stdout); err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to write image to stdout", err)
		}
		return nil
	}

	if err := os.WriteFile(path, img.Bytes(), 0o644); err != nil {
		return model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to write image to %s", path), err)
	}
	return nil
}

// printGenerateResult outputs the result in text or JSON format,
// depending on the global --json flag.
func printGenerateResult(w io.Writer, result model.GenerateResult) error {
	if IsJSONOutput() {
		return printJSON(w, result)
	}

	format := result.Format
	if format == "" {
		format = "unknown format"
	}
	_, err := fmt.Fprintf(w, "Wrote %s (%d bytes, %s, %dx%d, level %s, margin %d)\n",
		result.Output, result.Bytes, format, result.Width, result.Height, result.Level, result.Margin)
	if err == nil && result.Verified {
		_, err = fmt.Fprintln(w, "Verified: image decodes to the input text")
	}
	return err
}
