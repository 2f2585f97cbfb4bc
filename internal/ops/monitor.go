// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ops implements the command handlers shared by the CLI and the
// MCP server, so equivalent operations always produce structurally
// identical envelopes. Each handler runs the operation and returns an
// *envelope.Envelope; callers are responsible for the surrounding
// announce/progress/result/output rendering.
package ops

import (
	"github.com/kraklabs/wks/internal/app"
	"github.com/kraklabs/wks/internal/envelope"
	"github.com/kraklabs/wks/internal/errors"
)

// MonitorSync runs monitor.Sync(path, recursive) and reports the
// files_synced/files_skipped counts. If any file failed, AddError empties
// Data, so a failed envelope carries no counts.
func MonitorSync(a *app.App, path string, recursive bool) *envelope.Envelope {
	result, err := a.Monitor.Sync(path, recursive)
	if err != nil {
		return envelope.Fail(err)
	}
	env := envelope.Ok(map[string]any{
		"path":          path,
		"recursive":     recursive,
		"files_synced":  result.FilesSynced,
		"files_skipped": result.FilesSkipped,
	})
	// Per-file failures aggregate into error messages: the overall success
	// flag goes false if any are present.
	for _, e := range result.Errors {
		env.AddError("File sync failed", e)
	}
	return env
}

// MonitorCheck runs monitor.Check(path) read-only.
func MonitorCheck(a *app.App, path string) *envelope.Envelope {
	result := a.Monitor.Check(path)
	if !result.Monitored {
		return envelope.Fail(errors.NewPathNotMonitoredError(
			"Path is not monitored",
			path+" does not fall under any configured include path",
			"Add the path (or an ancestor) to monitor.filter.include_paths",
			nil,
		))
	}
	return envelope.Ok(map[string]any{
		"path":      path,
		"monitored": true,
		"priority":  result.Priority,
	})
}

// MonitorStatus reports the last sync timestamp.
func MonitorStatus(a *app.App) *envelope.Envelope {
	last, ok := a.Monitor.LastSync()
	return envelope.Ok(map[string]any{
		"last_sync": last,
		"has_synced": ok,
	})
}
