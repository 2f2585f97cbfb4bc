// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kraklabs/wks/pkg/mcp"
)

// runMCP starts the JSON-RPC server over stdio and blocks until stdin
// closes or a termination signal arrives.
func runMCP(configPath string) {
	globals := GlobalFlags{Display: "json", NoColor: true, Quiet: true}
	a := buildApp(configPath, globals)
	defer a.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := mcp.New(a).Serve(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mcp: %v\n", err)
		os.Exit(1)
	}
}
