// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package diff implements the diff engine registry backing the `diff`
// command group. Engines are selected by a configuration-declared name,
// never by reflection, mirroring pkg/transform's extension-keyed
// registry.
package diff

import (
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// Engine produces a unified diff between two byte slices.
type Engine interface {
	Name() string
	Diff(fromLabel, toLabel string, a, b []byte) (string, error)
}

// Registry looks engines up by the configured name.
type Registry struct {
	byName map[string]Engine
}

// NewRegistry builds a registry from a list of named engines. Later entries
// with a duplicate name overwrite earlier ones, matching pkg/transform's
// first-registered-wins-by-key shape inverted for last-wins-by-name (config
// order is authoritative here since names, unlike extensions, are unique by
// construction).
func NewRegistry(engines []Engine) *Registry {
	r := &Registry{byName: make(map[string]Engine, len(engines))}
	for _, e := range engines {
		r.byName[e.Name()] = e
	}
	return r
}

// Lookup returns the engine registered under name, if any.
func (r *Registry) Lookup(name string) (Engine, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Names lists the registered engine names in no particular order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for n := range r.byName {
		names = append(names, n)
	}
	return names
}

// textEngine renders a line-oriented unified diff via go-difflib.
type textEngine struct {
	context int
}

// NewTextEngine builds the "text" diff engine. context is the number of
// unchanged lines shown around each change hunk (difflib's Context field);
// callers pass a configured value or 3 as a sane default.
func NewTextEngine(context int) Engine {
	if context <= 0 {
		context = 3
	}
	return &textEngine{context: context}
}

func (e *textEngine) Name() string { return "text" }

func (e *textEngine) Diff(fromLabel, toLabel string, a, b []byte) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(a)),
		B:        difflib.SplitLines(string(b)),
		FromFile: fromLabel,
		ToFile:   toLabel,
		Context:  e.context,
	}
	out, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", fmt.Errorf("diff: %w", err)
	}
	return out, nil
}

// EnginesFromConfig builds the engines named in diff.engines (internal
// config.DiffConfig.Engines). Unknown names are skipped by the caller via
// the returned Registry's Lookup, matching transform.EnginesFromConfig's
// shape of turning a config slice into runtime objects.
func EnginesFromConfig(names []string) []Engine {
	engines := make([]Engine, 0, len(names))
	for _, name := range names {
		switch name {
		case "text":
			engines = append(engines, NewTextEngine(3))
		}
	}
	return engines
}
