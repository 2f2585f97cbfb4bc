// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ops

import (
	"github.com/kraklabs/wks/internal/app"
	"github.com/kraklabs/wks/internal/envelope"
	"github.com/kraklabs/wks/pkg/vault"
)

// VaultRegister ensures the configured vault base path is a monitored
// include path and persists the registration.
func VaultRegister(a *app.App) *envelope.Envelope {
	if err := vault.Register(a.Config, a.Home); err != nil {
		return envelope.Fail(err)
	}
	return envelope.Ok(map[string]any{
		"base_path": a.Config.Vault.BasePath,
		"backend":   a.Config.Vault.Backend,
	})
}

// VaultSync parses sourcePath, replaces its edge set, and (for the Obsidian
// backend) maintains the _links symlink mirror for external targets.
func VaultSync(a *app.App, sourcePath string, remote bool) *envelope.Envelope {
	result, err := a.Vault.Sync(sourcePath, remote)
	if err != nil {
		return envelope.Fail(err)
	}
	return envelope.Ok(map[string]any{
		"source":        sourcePath,
		"remote":        remote,
		"edges_written": result.EdgesWritten,
	})
}

// VaultCheck parses sourcePath and classifies its links without writing.
func VaultCheck(a *app.App, sourcePath string, remote bool) *envelope.Envelope {
	result, err := a.Vault.Check(sourcePath, remote)
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
		"source": sourcePath,
		"remote": remote,
		"edges":  edges,
	}
	return env
}

// VaultStatus reports vault-scoped edge counts and invariant violations.
func VaultStatus(a *app.App) *envelope.Envelope {
	report, err := a.Vault.Status()
	if err != nil {
		return envelope.Fail(err)
	}
	env := envelope.Ok(map[string]any{
		"vault_edges": report.VaultEdges,
		"issues":      report.Issues,
	})
	for _, issue := range report.Issues {
		env.AddWarning(issue)
	}
	return env
}
