// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ops

import (
	"github.com/kraklabs/wks/internal/app"
	"github.com/kraklabs/wks/internal/config"
	"github.com/kraklabs/wks/internal/envelope"
)

// ConfigShow renders the active configuration document.
func ConfigShow(a *app.App) *envelope.Envelope {
	return envelope.Ok(map[string]any{
		"monitor":   a.Config.Monitor,
		"vault":     a.Config.Vault,
		"database":  a.Config.Database,
		"service":   a.Config.Service,
		"daemon":    a.Config.Daemon,
		"log":       a.Config.Log,
		"transform": a.Config.Transform,
		"diff":      a.Config.Diff,
		"display":   a.Config.Display,
	})
}

// ConfigListFilter lists one filter rule list.
func ConfigListFilter(a *app.App, kind config.FilterListKind) *envelope.Envelope {
	values, err := config.ListFilter(a.Config, kind)
	if err != nil {
		return envelope.Fail(err)
	}
	return envelope.Ok(map[string]any{
		"kind":   string(kind),
		"values": values,
	})
}

// ConfigAddFilter appends a value to a filter rule list and persists it.
func ConfigAddFilter(a *app.App, kind config.FilterListKind, value string) *envelope.Envelope {
	if err := config.AddFilterRule(a.Config, kind, value); err != nil {
		return envelope.Fail(err)
	}
	env := envelope.Ok(map[string]any{"kind": string(kind), "added": value})
	env.AddWarning("Configuration changed; restart the daemon for it to take effect")
	return env
}

// ConfigRemoveFilter removes a value from a filter rule list and persists it.
func ConfigRemoveFilter(a *app.App, kind config.FilterListKind, value string) *envelope.Envelope {
	if err := config.RemoveFilterRule(a.Config, kind, value); err != nil {
		return envelope.Fail(err)
	}
	env := envelope.Ok(map[string]any{"kind": string(kind), "removed": value})
	env.AddWarning("Configuration changed; restart the daemon for it to take effect")
	return env
}

// ConfigListPriority lists every managed directory and its base priority.
func ConfigListPriority(a *app.App) *envelope.Envelope {
	return envelope.Ok(map[string]any{
		"dirs": config.ListPriority(a.Config),
	})
}

// ConfigSetPriority sets (or overwrites) a managed directory's base priority.
func ConfigSetPriority(a *app.App, dir string, base float64) *envelope.Envelope {
	if err := config.SetPriority(a.Config, dir, base); err != nil {
		return envelope.Fail(err)
	}
	env := envelope.Ok(map[string]any{"dir": dir, "base_priority": base})
	env.AddWarning("Configuration changed; restart the daemon for it to take effect")
	return env
}

// ConfigRemovePriority removes a managed directory.
func ConfigRemovePriority(a *app.App, dir string) *envelope.Envelope {
	if err := config.RemovePriority(a.Config, dir); err != nil {
		return envelope.Fail(err)
	}
	env := envelope.Ok(map[string]any{"dir": dir})
	env.AddWarning("Configuration changed; restart the daemon for it to take effect")
	return env
}
