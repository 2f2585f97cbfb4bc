// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/wks/internal/ops"
)

func runDatabase(args []string, configPath string, globals GlobalFlags) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: wks database reset [--yes] [collection ...]")
		os.Exit(1)
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "reset":
		fs := flag.NewFlagSet("database reset", flag.ExitOnError)
		confirm := fs.Bool("yes", false, "Confirm the reset (required)")
		fs.Parse(rest)
		if !*confirm {
			fmt.Fprintln(os.Stderr, "Error: --yes is required to confirm deleting database collections")
			os.Exit(1)
		}
		a := buildApp(configPath, globals)
		announce(globals, "Resetting database collections")
		render(a, ops.DatabaseReset(a, fs.Args()), globals)

	default:
		fmt.Fprintf(os.Stderr, "Unknown database subcommand: %s\n", sub)
		os.Exit(1)
	}
}
