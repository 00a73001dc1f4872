// Package model defines the CLI-level types and value objects for qrchart.
//
// This package contains plain data structures (RendererKind, GenerateResult,
// CapacityReport) used by the cli and server packages. The QR domain
// types themselves are in pkg/qrcode.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
