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

func runMonitor(args []string, configPath string, globals GlobalFlags) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: wks monitor <sync|check|status> [options]")
		os.Exit(1)
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "sync":
		fs := flag.NewFlagSet("monitor sync", flag.ExitOnError)
		recursive := fs.Bool("recursive", true, "Walk subdirectories")
		fs.Parse(rest)
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: wks monitor sync <path> [--recursive=true]")
			os.Exit(1)
		}
		path := fs.Arg(0)
		a := buildApp(configPath, globals)
		announce(globals, "Syncing %s", path)
		render(a, ops.MonitorSync(a, path, *recursive), globals)

	case "check":
		fs := flag.NewFlagSet("monitor check", flag.ExitOnError)
		fs.Parse(rest)
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: wks monitor check <path>")
			os.Exit(1)
		}
		a := buildApp(configPath, globals)
		render(a, ops.MonitorCheck(a, fs.Arg(0)), globals)

	case "status":
		fs := flag.NewFlagSet("monitor status", flag.ExitOnError)
		fs.Parse(rest)
		a := buildApp(configPath, globals)
		render(a, ops.MonitorStatus(a), globals)

	default:
		fmt.Fprintf(os.Stderr, "Unknown monitor subcommand: %s\n", sub)
		os.Exit(1)
	}
}
