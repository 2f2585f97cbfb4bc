// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ops

import (
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kraklabs/wks/internal/app"
	"github.com/kraklabs/wks/internal/envelope"
	"github.com/kraklabs/wks/internal/errors"
)

// LinkSync parses path (walking it first when recursive and path is a
// directory) and replaces each file's edge set. linkgraph.Engine.Sync only
// operates on one file at a time, so the directory walk lives here,
// mirroring monitor.Engine.Sync's own recursive-walk shape.
func LinkSync(a *app.App, path, parser string, recursive bool) *envelope.Envelope {
	files, err := collectLinkSources(path, recursive)
	if err != nil {
		return envelope.Fail(err)
	}
	env := envelope.Ok(map[string]any{
		"path":      path,
		"recursive": recursive,
	})
	written := 0
	for _, f := range files {
		result, err := a.Link.Sync(f, parser, false)
		if err != nil {
			env.AddError("Link sync failed for "+f, err.Error())
			continue
		}
		written += result.EdgesWritten
	}
	env.Data["files_processed"] = len(files)
	env.Data["edges_written"] = written
	return env
}

// LinkCheck parses path read-only and reports each link's status.
func LinkCheck(a *app.App, path, parser string, remote bool) *envelope.Envelope {
	result, err := a.Link.Check(path, parser, remote)
	if err != nil {
		return envelope.Fail(err)
	}
	edges := make([]map[string]any, 0, len(result.Edges))
	env := envelope.Ok(nil)
	for _, e := range result.Edges {
		edges = append(edges, map[string]any{
			"to_uri": e.ToURI,
			"line":   e.LineNumber,
			"column": e.ColumnNumber,
			"name":   e.Name,
			"status": string(e.Status),
		})
		if e.Status != "ok" {
			env.AddWarning(e.Name + " -> " + e.ToURI + ": " + string(e.Status))
		}
	}
	env.Data = map[string]any{
		"source": path,
		"edges":  edges,
	}
	return env
}

// LinkShow lists edges touching a URI.
func LinkShow(a *app.App, u, direction string) *envelope.Envelope {
	docs, err := a.Link.Show(u, direction)
	if err != nil {
		return envelope.Fail(err)
	}
	edges := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		edges = append(edges, map[string]any(d))
	}
	return envelope.Ok(map[string]any{
		"uri":       u,
		"direction": direction,
		"edges":     edges,
	})
}

// LinkPrune removes edges whose source or target no longer exists.
func LinkPrune(a *app.App, remote bool) *envelope.Envelope {
	result, err := a.Link.Prune(remote)
	if err != nil {
		return envelope.Fail(err)
	}
	return envelope.Ok(map[string]any{
		"remote":  remote,
		"removed": result.Removed,
	})
}

// collectLinkSources returns path itself (if a regular file) or, when
// recursive and path is a directory, every regular file beneath it.
func collectLinkSources(path string, recursive bool) ([]string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	stat, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !stat.IsDir() {
		return []string{abs}, nil
	}
	if !recursive {
		return nil, errors.NewInputError(
			"Path is a directory",
			abs+" is a directory; pass --recursive to walk it",
			"Retry with --recursive, or point at a single file",
		)
	}
	var files []string
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, p)
		return nil
	})
	return files, err
}
