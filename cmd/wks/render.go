// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/kraklabs/wks/internal/app"
	"github.com/kraklabs/wks/internal/config"
	"github.com/kraklabs/wks/internal/envelope"
	"github.com/kraklabs/wks/internal/errors"
)

// buildApp loads the configuration (from configPath if given, otherwise
// {WKS_HOME}/config.json) and constructs the shared application runtime.
// A load or connection failure is always fatal.
func buildApp(configPath string, globals GlobalFlags) *app.App {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFrom(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fatal(err, globals)
	}

	home, err := config.Home()
	if err != nil {
		fatal(err, globals)
	}

	a, err := app.New(cfg, home, nil)
	if err != nil {
		fatal(err, globals)
	}
	return a
}

// fatal prints a UserError and exits with a non-zero status. It is used
// only for failures that occur before an Envelope can be constructed
// (configuration loading, database connection) — once inside a command,
// failures flow through an Envelope instead.
func fatal(err error, globals GlobalFlags) {
	ue := errors.AsUserError(err)
	fmt.Fprintln(os.Stderr, ue.Format(!globals.NoColor))
	os.Exit(1)
}

// render finishes an already-built Envelope: announce was the caller's
// responsibility before invoking the operation; render prints the result
// summary to stderr and the structured payload to stdout, then exits with
// the matching code. It closes a first, since os.Exit runs ahead of any
// deferred a.Close().
func render(a *app.App, env *envelope.Envelope, globals GlobalFlags) {
	a.Close()
	envelope.Result(env)
	format := envelope.DisplayYAML
	if globals.Display == "json" {
		format = envelope.DisplayJSON
	}
	if err := envelope.WriteOutput(env, format); err != nil {
		fmt.Fprintf(os.Stderr, "cannot encode output: %v\n", err)
		os.Exit(1)
	}
	os.Exit(envelope.ExitCode(env))
}

func announce(globals GlobalFlags, format string, args ...any) {
	if globals.Quiet {
		return
	}
	envelope.Announce(format, args...)
}
