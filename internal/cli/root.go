// Package cli implements the cobra-based CLI commands for qrchart.
//
// Each subcommand (generate, info, capacity, scan, serve) is defined in its
// own file within this package. This file defines the root command that
// serves as the parent for all subcommands, handles global flags and loads
// the configuration shared by every subcommand.
package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/qrchart/internal/config"
	"github.com/shinji-kodama/qrchart/internal/logger"
	"github.com/shinji-kodama/qrchart/internal/model"
	"github.com/shinji-kodama/qrchart/internal/server"
	"github.com/shinji-kodama/qrchart/pkg/qrcode"
)

// Global flag variables shared across all subcommands.
// These are bound to cobra persistent flags on the root command,
// which makes them available to every subcommand automatically.
var (
	// jsonOutput controls whether command output is formatted as JSON.
	jsonOutput bool

	// verbose lowers the log level to debug, which among other things
	// logs every request sent to the chart service.
	verbose bool

	// configPath points at an optional YAML or JSON/JSONC config file.
	configPath string

	// envFiles lists .env files to load before reading QRCHART_* variables.
	// When empty, ./.env is loaded if it exists.
	envFiles []string
)

// appConfig and appLogger are populated by the root command's
// PersistentPreRunE before any subcommand runs.
var (
	appConfig *config.Config
	appLogger = slog.New(slog.NewTextHandler(io.Discard, nil))
)

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "qrchart",
		Short: "Generate QR code images through a chart service",
		Long: `qrchart renders QR code images by posting text to a remote chart
service and returning the image it answers with.

Text is checked against the QR code capacity for the selected
error-correction level before any request is made. Images can also be
rendered in-process (--renderer local), inspected, and scanned back.

Settings are read, in increasing priority, from built-in defaults, the
--config file, .env files, QRCHART_* environment variables and flags.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically.
		// We format errors ourselves (text or JSON based on --json flag).
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd.ErrOrStderr())
		},
	}

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "Load environment variables from these files (default: ./.env if present)")

	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewInfoCommand())
	rootCmd.AddCommand(NewCapacityCommand())
	rootCmd.AddCommand(NewScanCommand())
	rootCmd.AddCommand(NewServeCommand())

	return rootCmd
}

// setup loads the configuration and builds the logger. Log output goes to
// stderr so that stdout stays clean for image data and JSON results.
func setup(stderr io.Writer) error {
	cfg, err := config.Load(configPath, envFiles...)
	if err != nil {
		return err
	}
	appConfig = cfg

	// Validate has already checked both values.
	format, _ := logger.ParseFormat(cfg.LogFormat)
	level, _ := logger.ParseLevel(cfg.LogLevel)
	if verbose {
		level = slog.LevelDebug
	}

	appLogger = logger.New(
		logger.WithFormat(format),
		logger.WithLevel(level),
		logger.WithOutput(stderr),
		logger.WithContextValue("request_id", server.RequestIDKey),
	)
	return nil
}

// Execute runs the root command and handles exit codes.
// This is the main entry point called from main.go.
//
// CLIErrors carry their own exit codes, errors from pkg/qrcode are mapped
// by model.FromLibraryError, and anything else (e.g. cobra usage errors)
// exits with code 1.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		cliErr := toCLIError(err)
		printError(os.Stderr, cliErr.Message, cliErr.Err)
		os.Exit(int(cliErr.Code))
	}
}

// toCLIError classifies an error returned by a command.
func toCLIError(err error) *model.CLIError {
	var cliErr *model.CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	if isLibraryError(err) && errors.As(model.FromLibraryError(err), &cliErr) {
		return cliErr
	}

	// Generic error: print it as is, exit with code 1.
	return model.NewCLIError(model.ExitGeneralError, err.Error())
}

// isLibraryError reports whether err belongs to one of the pkg/qrcode
// error categories.
func isLibraryError(err error) bool {
	for _, sentinel := range []error{
		qrcode.ErrInvalidArgument,
		qrcode.ErrValidation,
		qrcode.ErrRender,
		qrcode.ErrDecode,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// printError outputs an error message in the appropriate format
// (JSON or text) based on the --json global flag.
func printError(w io.Writer, message string, underlying error) {
	if jsonOutput {
		errObj := map[string]interface{}{
			"error": map[string]interface{}{
				"message": message,
			},
		}
		if underlying != nil {
			if errMap, ok := errObj["error"].(map[string]interface{}); ok {
				errMap["detail"] = errorDetail(underlying)
			}
		}
		// Errors go to stderr even in JSON mode, because stdout is
		// reserved for successful command output.
		data, _ := json.MarshalIndent(errObj, "", "  ")
		fmt.Fprintln(w, string(data))
		return
	}

	if underlying != nil {
		fmt.Fprintf(w, "Error: %s: %s\n", message, errorDetail(underlying))
	} else {
		fmt.Fprintf(w, "Error: %s\n", message)
	}
}

// errorDetail prefers the longer description of a ValidationError, which
// names the limit that was exceeded.
func errorDetail(err error) string {
	var detailed interface{ Detail() string }
	if errors.As(err, &detailed) {
		return detailed.Detail()
	}
	return err.Error()
}

// VerboseLog logs a debug message. It is shown only with --verbose or
// log level debug.
func VerboseLog(format string, args ...interface{}) {
	appLogger.Debug(fmt.Sprintf(format, args...))
}

// IsJSONOutput returns whether the --json flag is set.
// Subcommands use this to decide their output format.
func IsJSONOutput() bool {
	return jsonOutput
}

// printJSON writes v as indented JSON followed by a newline.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
