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

func runLog(args []string, configPath string, globals GlobalFlags) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: wks log <show|prune> [options]")
		os.Exit(1)
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "show":
		fs := flag.NewFlagSet("log show", flag.ExitOnError)
		levels := fs.StringSlice("level", nil, "Restrict to these levels (repeatable)")
		fs.Parse(rest)
		a := buildApp(configPath, globals)
		render(a, ops.LogShow(a, *levels), globals)

	case "prune":
		fs := flag.NewFlagSet("log prune", flag.ExitOnError)
		fs.Parse(rest)
		a := buildApp(configPath, globals)
		announce(globals, "Pruning log entries past retention")
		render(a, ops.LogPrune(a), globals)

	default:
		fmt.Fprintf(os.Stderr, "Unknown log subcommand: %s\n", sub)
		os.Exit(1)
	}
}
