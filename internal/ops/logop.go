// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ops

import (
	"time"

	"github.com/kraklabs/wks/internal/app"
	"github.com/kraklabs/wks/internal/envelope"
	wkslog "github.com/kraklabs/wks/internal/log"
)

// LogShow returns every log line left after retention pruning that matches
// levels (empty means all levels).
func LogShow(a *app.App, levels []string) *envelope.Envelope {
	lines, err := wkslog.Show(a.Config.Log.Path, retentionFrom(a), levels, time.Now())
	if err != nil {
		return envelope.Fail(err)
	}
	return envelope.Ok(map[string]any{
		"lines": lines,
		"count": len(lines),
	})
}

// LogPrune deletes log entries older than the configured retention window.
func LogPrune(a *app.App) *envelope.Envelope {
	if err := wkslog.Prune(a.Config.Log.Path, retentionFrom(a), time.Now()); err != nil {
		return envelope.Fail(err)
	}
	return envelope.Ok(map[string]any{
		"path": a.Config.Log.Path,
	})
}

func retentionFrom(a *app.App) wkslog.Retention {
	return wkslog.Retention{
		Debug:   a.Config.Log.DebugRetentionDays,
		Info:    a.Config.Log.InfoRetentionDays,
		Warning: a.Config.Log.WarningRetentionDays,
		Error:   a.Config.Log.ErrorRetentionDays,
	}
}
