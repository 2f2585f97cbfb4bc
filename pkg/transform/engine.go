// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transform implements the content-addressed transform cache:
// named engines turn a binary file into a derived artifact, keyed by
// (file checksum, engine, options hash), cached on disk and indexed in
// the transform collection.
package transform

import (
	"fmt"
	"os"

	"github.com/kraklabs/wks/internal/config"
)

// EnginesFromConfig builds the identity engines declared in the
// transform.engines config block. Every configured entry becomes a
// pass-through (identity) engine; no other engine type is built here or
// registered elsewhere in this module.
func EnginesFromConfig(cfgs []config.TransformEngineConfig) []Engine {
	engines := make([]Engine, 0, len(cfgs))
	for _, c := range cfgs {
		engines = append(engines, NewIdentityEngine(c.Name, c.Ext))
	}
	return engines
}

// Engine is an external collaborator: given a source file path and a
// canonical options map, it produces a temp file holding the transformed
// bytes plus the extension that artifact should be cached under. The
// cache controller owns moving that temp file into place.
type Engine interface {
	Name() string
	// Extensions lists the file extensions (dotless, lowercase) this
	// engine claims as its default for cat's extension-based resolution.
	Extensions() []string
	Transform(srcPath string, options map[string]any) (tmpPath, ext string, err error)
}

// Registry resolves engines by name and by default-extension lookup.
type Registry struct {
	byName map[string]Engine
	byExt  map[string]Engine
}

// NewRegistry builds a Registry from the configured engines, in order;
// later engines do not override an extension claimed by an earlier one.
func NewRegistry(engines []Engine) *Registry {
	r := &Registry{byName: map[string]Engine{}, byExt: map[string]Engine{}}
	for _, e := range engines {
		r.byName[e.Name()] = e
		for _, ext := range e.Extensions() {
			if _, taken := r.byExt[ext]; !taken {
				r.byExt[ext] = e
			}
		}
	}
	return r
}

// Lookup returns the named engine.
func (r *Registry) Lookup(name string) (Engine, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Default returns the engine registered for ext (dotless, lowercase), if
// any.
func (r *Registry) Default(ext string) (Engine, bool) {
	e, ok := r.byExt[ext]
	return e, ok
}

// identityEngine copies the source file verbatim; used as a fallback
// default and as a concrete Engine for tests that don't need a real
// transformation.
type identityEngine struct {
	name string
	ext  string
}

// NewIdentityEngine returns a trivial Engine that copies the source file
// into a temp file unchanged, tagging it with ext.
func NewIdentityEngine(name, ext string) Engine {
	return identityEngine{name: name, ext: ext}
}

func (e identityEngine) Name() string         { return e.name }
func (e identityEngine) Extensions() []string { return []string{e.ext} }

func (e identityEngine) Transform(srcPath string, _ map[string]any) (string, string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", "", fmt.Errorf("transform: open source: %w", err)
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "wks-transform-*")
	if err != nil {
		return "", "", fmt.Errorf("transform: create temp: %w", err)
	}
	defer tmp.Close()

	if _, err := copyBuffered(tmp, src); err != nil {
		os.Remove(tmp.Name())
		return "", "", fmt.Errorf("transform: copy: %w", err)
	}
	return tmp.Name(), e.ext, nil
}
