// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package errors

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// FatalError prints a UserError to standard error in the CLI's "FAIL"
// banner style and exits the process with a non-zero status.
//
// When jsonOutput is true, color is suppressed and nothing is written to
// standard output — standard output stays empty on failure per the
// command protocol's output contract.
func FatalError(err error, jsonOutput bool) {
	ue := AsUserError(err)
	useColor := !jsonOutput && isatty.IsTerminal(os.Stderr.Fd())
	fmt.Fprintln(os.Stderr, ue.Format(useColor))
	os.Exit(1)
}
