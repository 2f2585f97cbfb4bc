// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"io"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/wks/internal/errors"
	"github.com/kraklabs/wks/internal/ops"
)

func runTransform(args []string, configPath string, globals GlobalFlags) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: wks transform <run|cat|reset|audit> [options]")
		os.Exit(1)
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "run":
		fs := flag.NewFlagSet("transform run", flag.ExitOnError)
		engine := fs.String("engine", "", "Transform engine name (required)")
		fs.Parse(rest)
		if fs.NArg() < 1 || *engine == "" {
			fmt.Fprintln(os.Stderr, "Usage: wks transform run --engine NAME <path>")
			os.Exit(1)
		}
		a := buildApp(configPath, globals)
		announce(globals, "Transforming %s with %s", fs.Arg(0), *engine)
		render(a, ops.Transform(a, *engine, fs.Arg(0), nil), globals)

	case "cat":
		fs := flag.NewFlagSet("transform cat", flag.ExitOnError)
		fs.Parse(rest)
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: wks transform cat <checksum-or-path>")
			os.Exit(1)
		}
		a := buildApp(configPath, globals)
		rc, _, err := ops.Cat(a, fs.Arg(0))
		a.Close()
		if err != nil {
			fatal(err, globals)
		}
		defer rc.Close()
		if _, err := io.Copy(os.Stdout, rc); err != nil {
			fatal(errors.NewInternalError("Cannot write artifact to stdout",
				err.Error(), "check available disk space and stdout redirection", err), globals)
		}

	case "reset":
		fs := flag.NewFlagSet("transform reset", flag.ExitOnError)
		confirm := fs.Bool("yes", false, "Confirm the reset (required)")
		fs.Parse(rest)
		if !*confirm {
			fmt.Fprintln(os.Stderr, "Error: --yes is required to confirm deleting every cached transform")
			os.Exit(1)
		}
		a := buildApp(configPath, globals)
		announce(globals, "Resetting transform cache")
		render(a, ops.TransformReset(a), globals)

	case "audit":
		fs := flag.NewFlagSet("transform audit", flag.ExitOnError)
		fs.Parse(rest)
		a := buildApp(configPath, globals)
		announce(globals, "Auditing transform cache")
		render(a, ops.TransformAudit(a), globals)

	default:
		fmt.Fprintf(os.Stderr, "Unknown transform subcommand: %s\n", sub)
		os.Exit(1)
	}
}
