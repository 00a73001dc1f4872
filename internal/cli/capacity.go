// Package cli: capacity.go implements the "qrchart capacity" command.
//
// The capacity command shows how TEXT is classified (numeric, alphanumeric
// or byte) and whether it fits in a QR code at each error-correction level.
// It never contacts the chart service.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/shinji-kodama/qrchart/internal/model"
)

// NewCapacityCommand creates the "capacity" cobra command.
func NewCapacityCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "capacity TEXT",
		Short: "Show whether text fits in a QR code at each level",
		Long: `Show the alphabet class and byte length of TEXT and the capacity
limit at each error-correction level.

Examples:
  qrchart capacity "HELLO WORLD"
  qrchart capacity "$(cat payload.txt)" --json`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return printCapacityReport(cmd.OutOrStdout(), model.BuildCapacityReport(args[0]))
		},
	}
}

// printCapacityReport outputs the report in text or JSON format.
//
// The text format is:
//
//	Alphabet:   alphanumeric
//	Bytes:      11
//	Characters: 11
//
//	LEVEL  LIMIT  FITS
//	L      4295   yes
//	M      3390   yes
func printCapacityReport(w io.Writer, report model.CapacityReport) error {
	if IsJSONOutput() {
		return printJSON(w, report)
	}

	fmt.Fprintf(w, "Alphabet:   %s\n", report.Alphabet)
	fmt.Fprintf(w, "Bytes:      %d\n", report.Bytes)
	fmt.Fprintf(w, "Characters: %d\n", report.Characters)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-6s %-6s %s\n", "LEVEL", "LIMIT", "FITS")
	for _, entry := range report.Levels {
		fmt.Fprintf(w, "%-6s %-6d %s\n", entry.Level, entry.Limit, yesNo(entry.Fits))
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
