// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ops

import (
	"os"

	"github.com/kraklabs/wks/internal/app"
	"github.com/kraklabs/wks/internal/envelope"
	"github.com/kraklabs/wks/internal/errors"
)

// Diff renders a unified diff between fromPath and toPath using the named
// engine, falling back to the registry's only engine when name is empty
// and exactly one is configured.
func Diff(a *app.App, engineName, fromPath, toPath string) *envelope.Envelope {
	name := engineName
	if name == "" {
		names := a.Diff.Names()
		if len(names) != 1 {
			return envelope.Fail(errors.NewInputError(
				"No diff engine specified",
				"multiple diff engines are configured; an explicit name is required",
				"pass --engine with one of the configured diff engine names",
			))
		}
		name = names[0]
	}
	engine, ok := a.Diff.Lookup(name)
	if !ok {
		return envelope.Fail(errors.NewUnsupportedError(
			"Unknown diff engine",
			"no diff engine is registered under "+name,
			"check the diff.engines entries in the configuration",
			nil,
		))
	}

	from, err := os.ReadFile(fromPath)
	if err != nil {
		return envelope.Fail(err)
	}
	to, err := os.ReadFile(toPath)
	if err != nil {
		return envelope.Fail(err)
	}

	out, err := engine.Diff(fromPath, toPath, from, to)
	if err != nil {
		return envelope.Fail(errors.NewEngineError(
			"Diff engine failed", err.Error(),
			"check that both files are in a format the engine supports", err,
		))
	}
	return envelope.Ok(map[string]any{
		"engine": name,
		"from":   fromPath,
		"to":     toPath,
		"diff":   out,
		"equal":  out == "",
	})
}
