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

func runDiff(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("diff", flag.ExitOnError)
	engine := fs.String("engine", "", "Diff engine name (default: the only configured engine)")
	fs.Parse(args)
	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: wks diff [--engine NAME] <from> <to>")
		os.Exit(1)
	}
	a := buildApp(configPath, globals)
	render(a, ops.Diff(a, *engine, fs.Arg(0), fs.Arg(1)), globals)
}
