// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui renders the stage 1-3 human-facing output of the command
// protocol (announce, progress, result) to standard error.
package ui

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	headerColor  = color.New(color.FgCyan, color.Bold)
	subColor     = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	labelColor   = color.New(color.Bold)
	dimColor     = color.New(color.Faint)
)

// InitColors disables color rendering when noColor is set or when standard
// error is not a terminal (the NO_COLOR env var is honored by the caller
// before this is invoked).
func InitColors(noColor bool) {
	disable := noColor || !isatty.IsTerminal(os.Stderr.Fd())
	color.NoColor = disable
}

// Header prints a bold section header to standard error.
func Header(text string) {
	fmt.Fprintln(os.Stderr, headerColor.Sprint(text))
}

// SubHeader prints a secondary section header to standard error.
func SubHeader(text string) {
	fmt.Fprintln(os.Stderr, subColor.Sprint(text))
}

// Warning prints a yellow warning line to standard error.
func Warning(text string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", warnColor.Sprint("WARN:"), text)
}

// Warningf formats and prints a warning line.
func Warningf(format string, args ...interface{}) {
	Warning(fmt.Sprintf(format, args...))
}

// Success prints a green success line to standard error.
func Success(text string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", successColor.Sprint("OK:"), text)
}

// Info prints an informational line to standard error.
func Info(text string) {
	fmt.Fprintln(os.Stderr, text)
}

// ErrorLine prints a red error line to standard error.
func ErrorLine(text string) {
	fmt.Fprintf(os.Stderr, "%s %s\n", errorColor.Sprint("FAIL:"), text)
}

// Label renders a bold field label, e.g. "Project ID:".
func Label(text string) string {
	return labelColor.Sprint(text)
}

// DimText renders de-emphasized text such as a file path.
func DimText(text string) string {
	return dimColor.Sprint(text)
}

// CountText renders an integer count, used for entity summaries.
func CountText(n int) string {
	return humanize.Comma(int64(n))
}

// Bytes renders a byte count in human-readable form (e.g. "1.2 MB").
func Bytes(n int64) string {
	return humanize.Bytes(uint64(n))
}
