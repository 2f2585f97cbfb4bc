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

func runLink(args []string, configPath string, globals GlobalFlags) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: wks link <sync|check|show|prune> [options]")
		os.Exit(1)
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "sync":
		fs := flag.NewFlagSet("link sync", flag.ExitOnError)
		parser := fs.String("parser", "", "Explicit parser name (default: by extension)")
		recursive := fs.Bool("recursive", false, "Walk a directory argument")
		fs.Parse(rest)
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: wks link sync <path> [--parser NAME] [--recursive]")
			os.Exit(1)
		}
		a := buildApp(configPath, globals)
		announce(globals, "Syncing links for %s", fs.Arg(0))
		render(a, ops.LinkSync(a, fs.Arg(0), *parser, *recursive), globals)

	case "check":
		fs := flag.NewFlagSet("link check", flag.ExitOnError)
		parser := fs.String("parser", "", "Explicit parser name (default: by extension)")
		remote := fs.Bool("remote", false, "Probe http(s) targets for reachability")
		fs.Parse(rest)
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: wks link check <path> [--parser NAME] [--remote]")
			os.Exit(1)
		}
		a := buildApp(configPath, globals)
		render(a, ops.LinkCheck(a, fs.Arg(0), *parser, *remote), globals)

	case "show":
		fs := flag.NewFlagSet("link show", flag.ExitOnError)
		direction := fs.String("direction", "either", "from|to|either")
		fs.Parse(rest)
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: wks link show <uri> [--direction from|to|either]")
			os.Exit(1)
		}
		a := buildApp(configPath, globals)
		render(a, ops.LinkShow(a, fs.Arg(0), *direction), globals)

	case "prune":
		fs := flag.NewFlagSet("link prune", flag.ExitOnError)
		remote := fs.Bool("remote", false, "Also probe http(s) targets for reachability")
		fs.Parse(rest)
		a := buildApp(configPath, globals)
		announce(globals, "Pruning stale edges")
		render(a, ops.LinkPrune(a, *remote), globals)

	default:
		fmt.Fprintf(os.Stderr, "Unknown link subcommand: %s\n", sub)
		os.Exit(1)
	}
}
