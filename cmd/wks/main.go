// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package main implements the wks CLI: a filesystem monitor, link graph,
// vault mirror, and transform cache for a tree of notes and documents.
//
// Usage:
//
//	wks config init               Create {WKS_HOME}/config.json
//	wks monitor sync <path>        Walk and score a path
//	wks link check <path>          Report link health for a file
//	wks daemon start               Run the background watcher
//	wks --mcp                      Start as MCP server (JSON-RPC over stdio)
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/wks/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// GlobalFlags holds the flags that apply regardless of subcommand.
type GlobalFlags struct {
	Display string
	NoColor bool
	Verbose int
	Quiet   bool
}

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		mcpMode     = flag.Bool("mcp", false, "Start as MCP server (JSON-RPC over stdio)")
		configPath  = flag.StringP("config", "c", "", "Path to config.json (default: {WKS_HOME}/config.json)")
		display     = flag.String("display", "yaml", "Output format for the result payload: yaml|json")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		verbose     = flag.CountP("verbose", "v", "Increase verbosity (-v for info, -vv for debug)")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress non-essential output (progress, info messages)")
	)

	// Stop parsing at the first non-flag argument so subcommand-specific
	// flags (e.g. "monitor sync --recursive") pass through untouched.
	flag.SetInterspersed(false)

	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `wks - filesystem monitor, link graph, and transform cache

Usage:
  wks <command> <subcommand> [options]

Commands:
  config      Show or mutate the configuration document
  monitor     Sync/check monitored paths and inspect priority scoring
  vault       Register, sync, check, and inspect the Obsidian vault mirror
  link        Sync, check, show, and prune the link graph directly
  transform   Run and fetch cached file transforms
  diff        Render a unified diff between two files
  database    Reset collections in the database backend
  log         Show or prune the unified log file
  daemon      Start, stop, or check the background watcher
  service     Install or remove the daemon as a system service

Global Options:
  --display {yaml,json}  Output format for the result payload (default yaml)
  --no-color             Disable color output (respects NO_COLOR env var)
  -v, --verbose          Increase verbosity (-v for info, -vv for debug)
  -q, --quiet            Suppress non-essential output
  --mcp                  Start as MCP server (JSON-RPC over stdio)
  -c, --config           Path to an explicit config.json
  -V, --version          Show version and exit

For detailed command help: wks <command> --help

`)
	}

	flag.Parse()

	if *showVersion {
		fmt.Printf("wks version %s\n", version)
		fmt.Printf("commit: %s\n", commit)
		fmt.Printf("built: %s\n", date)
		os.Exit(0)
	}

	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}
	if *quiet && *verbose > 0 {
		fmt.Fprintln(os.Stderr, "Error: cannot use --quiet and --verbose together")
		os.Exit(1)
	}
	if *display != "yaml" && *display != "json" {
		fmt.Fprintf(os.Stderr, "Error: --display must be yaml or json, got %q\n", *display)
		os.Exit(1)
	}
	if *display == "json" {
		*quiet = true
	}

	globals := GlobalFlags{
		Display: *display,
		NoColor: *noColor,
		Verbose: *verbose,
		Quiet:   *quiet,
	}
	ui.InitColors(globals.NoColor)

	if *mcpMode {
		runMCP(*configPath)
		return
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	group := args[0]
	rest := args[1:]

	switch group {
	case "config":
		runConfig(rest, *configPath, globals)
	case "monitor":
		runMonitor(rest, *configPath, globals)
	case "vault":
		runVault(rest, *configPath, globals)
	case "link":
		runLink(rest, *configPath, globals)
	case "transform":
		runTransform(rest, *configPath, globals)
	case "diff":
		runDiff(rest, *configPath, globals)
	case "database":
		runDatabase(rest, *configPath, globals)
	case "log":
		runLog(rest, *configPath, globals)
	case "daemon":
		runDaemon(rest, *configPath, globals)
	case "service":
		runService(rest, *configPath, globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", group)
		flag.Usage()
		os.Exit(1)
	}
}
