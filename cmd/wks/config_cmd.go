// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/wks/internal/config"
	"github.com/kraklabs/wks/internal/envelope"
	"github.com/kraklabs/wks/internal/ops"
)

func runConfig(args []string, configPath string, globals GlobalFlags) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: wks config <init|show|list-filter|add-filter|remove-filter|list-priority|set-priority|remove-priority> [options]")
		os.Exit(1)
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "init":
		runConfigInit(rest, configPath, globals)
	case "show":
		a := buildApp(configPath, globals)
		render(a, ops.ConfigShow(a), globals)
	case "list-filter":
		fs := flag.NewFlagSet("config list-filter", flag.ExitOnError)
		fs.Parse(rest)
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: wks config list-filter <kind>")
			os.Exit(1)
		}
		a := buildApp(configPath, globals)
		render(a, ops.ConfigListFilter(a, config.FilterListKind(fs.Arg(0))), globals)
	case "add-filter":
		fs := flag.NewFlagSet("config add-filter", flag.ExitOnError)
		fs.Parse(rest)
		if fs.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: wks config add-filter <kind> <value>")
			os.Exit(1)
		}
		a := buildApp(configPath, globals)
		render(a, ops.ConfigAddFilter(a, config.FilterListKind(fs.Arg(0)), fs.Arg(1)), globals)
	case "remove-filter":
		fs := flag.NewFlagSet("config remove-filter", flag.ExitOnError)
		fs.Parse(rest)
		if fs.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: wks config remove-filter <kind> <value>")
			os.Exit(1)
		}
		a := buildApp(configPath, globals)
		render(a, ops.ConfigRemoveFilter(a, config.FilterListKind(fs.Arg(0)), fs.Arg(1)), globals)
	case "list-priority":
		a := buildApp(configPath, globals)
		render(a, ops.ConfigListPriority(a), globals)
	case "set-priority":
		fs := flag.NewFlagSet("config set-priority", flag.ExitOnError)
		fs.Parse(rest)
		if fs.NArg() < 2 {
			fmt.Fprintln(os.Stderr, "Usage: wks config set-priority <dir> <base-priority>")
			os.Exit(1)
		}
		var base float64
		if _, err := fmt.Sscanf(fs.Arg(1), "%g", &base); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid base priority %q\n", fs.Arg(1))
			os.Exit(1)
		}
		a := buildApp(configPath, globals)
		render(a, ops.ConfigSetPriority(a, fs.Arg(0), base), globals)
	case "remove-priority":
		fs := flag.NewFlagSet("config remove-priority", flag.ExitOnError)
		fs.Parse(rest)
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "Usage: wks config remove-priority <dir>")
			os.Exit(1)
		}
		a := buildApp(configPath, globals)
		render(a, ops.ConfigRemovePriority(a, fs.Arg(0)), globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", sub)
		os.Exit(1)
	}
}

// runConfigInit writes a fresh default configuration document. Unlike the
// other config subcommands, it must not call buildApp: there may be no
// valid configuration (or database) to load yet.
func runConfigInit(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("config init", flag.ExitOnError)
	force := fs.Bool("force", false, "Overwrite an existing configuration")
	fs.Parse(args)

	path := configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			fatal(err, globals)
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil && !*force {
		fmt.Fprintf(os.Stderr, "Error: %s already exists; pass --force to overwrite\n", path)
		os.Exit(1)
	}

	home, err := config.Home()
	if err != nil {
		fatal(err, globals)
	}
	cfg := config.Default(home)
	if err := config.SaveTo(cfg, path); err != nil {
		fatal(err, globals)
	}

	env := envelope.Ok(map[string]any{"path": path})
	envelope.Result(env)
	format := envelope.DisplayYAML
	if globals.Display == "json" {
		format = envelope.DisplayJSON
	}
	if err := envelope.WriteOutput(env, format); err != nil {
		fmt.Fprintf(os.Stderr, "cannot encode output: %v\n", err)
		os.Exit(1)
	}
}
