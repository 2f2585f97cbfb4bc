// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ops

import (
	"path/filepath"

	"github.com/kraklabs/wks/internal/app"
	"github.com/kraklabs/wks/internal/envelope"
	"github.com/kraklabs/wks/internal/errors"
	"github.com/kraklabs/wks/pkg/daemon"
)

// DaemonStatus reads {WKS_HOME}/daemon.json without starting anything;
// the daemon process itself (start/stop) is long-running and lives in the
// CLI entry point, not in this request/response handler layer.
func DaemonStatus(a *app.App) *envelope.Envelope {
	path := filepath.Join(a.Home, "daemon.json")
	status, found, err := daemon.ReadStatus(path)
	if err != nil {
		return envelope.Fail(err)
	}
	if !found {
		return envelope.Fail(errors.NewNotFoundError(
			"Daemon is not running",
			"no daemon.json heartbeat file was found at "+path,
			"Start the daemon with `wks daemon start`",
			nil,
		))
	}
	return envelope.Ok(map[string]any{
		"pid":          status.PID,
		"running":      status.Running,
		"restrict_dir": status.RestrictDir,
		"log_path":     status.LogPath,
		"last_sync":    status.LastSync,
		"warnings":     status.Warnings,
		"errors":       status.Errors,
	})
}
