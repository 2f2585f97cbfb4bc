// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	flag "github.com/spf13/pflag"

	"github.com/kraklabs/wks/internal/config"
	"github.com/kraklabs/wks/internal/ops"
	"github.com/kraklabs/wks/pkg/daemon"
)

func runDaemon(args []string, configPath string, globals GlobalFlags) {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: wks daemon <start|stop|status> [options]")
		os.Exit(1)
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "start":
		runDaemonStart(rest, configPath, globals)
	case "stop":
		runDaemonStop(configPath, globals)
	case "status":
		a := buildApp(configPath, globals)
		render(a, ops.DaemonStatus(a), globals)
	default:
		fmt.Fprintf(os.Stderr, "Unknown daemon subcommand: %s\n", sub)
		os.Exit(1)
	}
}

// runDaemonStart runs the watcher in the foreground until a termination
// signal arrives. It does not go through the ops/envelope layer: the
// daemon is long-running, not a request/response operation.
func runDaemonStart(args []string, configPath string, globals GlobalFlags) {
	fs := flag.NewFlagSet("daemon start", flag.ExitOnError)
	restrict := fs.String("restrict", "", "Restrict watching to this directory only (overrides monitor.filter.include_paths)")
	fs.Parse(args)

	a := buildApp(configPath, globals)
	d := daemon.New(a.Config, a.Monitor, a.Nodes, a.Vault, a.Home, *restrict, a.Logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if !globals.Quiet {
		fmt.Fprintln(os.Stderr, "wks daemon starting; press Ctrl-C to stop")
	}
	if err := d.Run(ctx); err != nil {
		a.Close()
		fatal(err, globals)
	}
	a.Close()
}

// runDaemonStop sends SIGTERM to the running daemon (found via
// {WKS_HOME}/daemon.lock) and returns at once; it does not wait for the
// daemon to exit.
func runDaemonStop(configPath string, globals GlobalFlags) {
	home, err := config.Home()
	if err != nil {
		fatal(err, globals)
	}
	lockPath := filepath.Join(home, "daemon.lock")

	data, err := os.ReadFile(lockPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: no running daemon found (%s): %v\n", lockPath, err)
		os.Exit(1)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: lock file %s does not contain a valid PID\n", lockPath)
		os.Exit(1)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot find process %d: %v\n", pid, err)
		os.Exit(1)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot signal daemon (pid %d): %v\n", pid, err)
		os.Exit(1)
	}
	fmt.Printf("Sent SIGTERM to daemon (pid %d)\n", pid)
}
