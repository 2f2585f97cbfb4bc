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

func runVault(args []string, configPath string, globals GlobalFlags) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: wks vault <register|sync|check|status> [options]")
		os.Exit(1)
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "register":
		fs := flag.NewFlagSet("vault register", flag.ExitOnError)
		fs.Parse(rest)
		a := buildApp(configPath, globals)
		render(a, ops.VaultRegister(a), globals)

	case "sync":
		fs := flag.NewFlagSet("vault sync", flag.ExitOnError)
		remote := fs.Bool("remote", false, "Probe http(s) targets for reachability")
		fs.Parse(rest)
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: wks vault sync <path> [--remote]")
			os.Exit(1)
		}
		a := buildApp(configPath, globals)
		announce(globals, "Syncing vault links for %s", fs.Arg(0))
		render(a, ops.VaultSync(a, fs.Arg(0), *remote), globals)

	case "check":
		fs := flag.NewFlagSet("vault check", flag.ExitOnError)
		remote := fs.Bool("remote", false, "Probe http(s) targets for reachability")
		fs.Parse(rest)
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: wks vault check <path> [--remote]")
			os.Exit(1)
		}
		a := buildApp(configPath, globals)
		render(a, ops.VaultCheck(a, fs.Arg(0), *remote), globals)

	case "status":
		fs := flag.NewFlagSet("vault status", flag.ExitOnError)
		fs.Parse(rest)
		a := buildApp(configPath, globals)
		render(a, ops.VaultStatus(a), globals)

	default:
		fmt.Fprintf(os.Stderr, "Unknown vault subcommand: %s\n", sub)
		os.Exit(1)
	}
}
