// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package priority computes the deterministic float priority of a
// filesystem path under a set of managed directories.
package priority

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Config holds the inputs to the priority algorithm.
type Config struct {
	// Dirs maps a canonical managed directory to its base priority.
	Dirs map[string]float64
	// DepthMultiplier is applied once per path component below the
	// chosen managed directory.
	DepthMultiplier float64
	// UnderscoreMultiplier is applied once per leading '_' character of
	// a component that is not exactly "_".
	UnderscoreMultiplier float64
	// OnlyUnderscoreMultiplier is applied (instead of UnderscoreMultiplier)
	// when a component is exactly "_".
	OnlyUnderscoreMultiplier float64
	// ExtensionWeights maps a file extension (including the leading dot)
	// to a multiplier applied once, at the end, based on path's extension.
	ExtensionWeights map[string]float64
}

// ErrNoManagedDir is returned by Priority when path is not under any of
// Config.Dirs. Callers must check monitored-ness (via the filter engine)
// before calling Priority; an un-monitored path reaching here is a caller
// bug, not a recoverable runtime condition.
type ErrNoManagedDir struct{ Path string }

func (e ErrNoManagedDir) Error() string {
	return fmt.Sprintf("priority: %q is not under any managed directory", e.Path)
}

// Priority computes priority(path). path need not exist on disk. Returns
// ErrNoManagedDir if no entry in cfg.Dirs is an ancestor of (or equal to)
// path.
func Priority(path string, cfg Config) (float64, error) {
	clean := filepath.Clean(path)

	var chosenDir string
	var chosenBase float64
	found := false
	for dir, base := range cfg.Dirs {
		cdir := filepath.Clean(dir)
		if !isAncestorOrSelf(cdir, clean) {
			continue
		}
		if !found || len(cdir) > len(chosenDir) {
			chosenDir = cdir
			chosenBase = base
			found = true
		}
	}
	if !found {
		return 0, ErrNoManagedDir{Path: path}
	}

	result := chosenBase

	rel, err := filepath.Rel(chosenDir, clean)
	if err != nil {
		return 0, fmt.Errorf("priority: %w", err)
	}
	if rel != "." {
		for _, comp := range strings.Split(rel, string(filepath.Separator)) {
			if comp == "" {
				continue
			}
			result *= cfg.DepthMultiplier
			if comp == "_" {
				result *= cfg.OnlyUnderscoreMultiplier
				continue
			}
			leading := 0
			for leading < len(comp) && comp[leading] == '_' {
				leading++
			}
			for i := 0; i < leading; i++ {
				result *= cfg.UnderscoreMultiplier
			}
		}
	}

	ext := filepath.Ext(clean)
	if w, ok := cfg.ExtensionWeights[ext]; ok {
		result *= w
	} else {
		result *= 1.0
	}

	return result, nil
}

// isAncestorOrSelf reports whether dir is clean equal to path or a
// path-component ancestor of it.
func isAncestorOrSelf(dir, path string) bool {
	if dir == path {
		return true
	}
	prefix := dir
	if !strings.HasSuffix(prefix, string(filepath.Separator)) {
		prefix += string(filepath.Separator)
	}
	return strings.HasPrefix(path, prefix)
}
