// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ops

import (
	"io"

	"github.com/kraklabs/wks/internal/app"
	"github.com/kraklabs/wks/internal/envelope"
)

// Transform runs (or reuses) a cached transform for filePath through
// engineName, reporting the resulting artifact checksum.
func Transform(a *app.App, engineName, filePath string, options map[string]any) *envelope.Envelope {
	checksum, warning, err := a.TransformCache.Transform(engineName, filePath, options)
	if err != nil {
		return envelope.Fail(err)
	}
	env := envelope.Ok(map[string]any{
		"engine":   engineName,
		"source":   filePath,
		"checksum": checksum,
	})
	if warning != "" {
		env.AddWarning(warning)
	}
	return env
}

// Cat resolves target (a cache checksum or a source path) and returns an
// open reader for the cached artifact plus its size; the caller owns
// closing it and streaming it to the destination (stdout for the CLI, a
// plain-text "content" field for MCP).
func Cat(a *app.App, target string) (io.ReadCloser, int64, error) {
	return a.TransformCache.Cat(target)
}

// TransformReset deletes every cached artifact and row.
func TransformReset(a *app.App) *envelope.Envelope {
	orphans, err := a.TransformCache.Reset()
	if err != nil {
		return envelope.Fail(err)
	}
	env := envelope.Ok(map[string]any{
		"orphans_removed": len(orphans),
	})
	for _, o := range orphans {
		env.AddWarning("Removed orphaned artifact " + o)
	}
	return env
}

// TransformAudit reconciles the transform collection against the cache
// directory, deleting whichever side of a mismatch is stale.
func TransformAudit(a *app.App) *envelope.Envelope {
	rowsDeleted, filesDeleted, err := a.TransformCache.Audit()
	if err != nil {
		return envelope.Fail(err)
	}
	return envelope.Ok(map[string]any{
		"rows_deleted":  rowsDeleted,
		"files_deleted": filesDeleted,
	})
}
