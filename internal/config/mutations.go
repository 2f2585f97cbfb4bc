// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"fmt"
	"sort"

	"github.com/kraklabs/wks/internal/errors"
)

// FilterListKind names one of the six filter rule lists a caller can
// mutate through AddFilterRule/RemoveFilterRule.
type FilterListKind string

const (
	FilterIncludePaths    FilterListKind = "include_paths"
	FilterExcludePaths    FilterListKind = "exclude_paths"
	FilterIncludeDirnames FilterListKind = "include_dirnames"
	FilterExcludeDirnames FilterListKind = "exclude_dirnames"
	FilterIncludeGlobs    FilterListKind = "include_globs"
	FilterExcludeGlobs    FilterListKind = "exclude_globs"
)

func filterListRef(f *FilterConfig, kind FilterListKind) (*[]string, error) {
	switch kind {
	case FilterIncludePaths:
		return &f.IncludePaths, nil
	case FilterExcludePaths:
		return &f.ExcludePaths, nil
	case FilterIncludeDirnames:
		return &f.IncludeDirnames, nil
	case FilterExcludeDirnames:
		return &f.ExcludeDirnames, nil
	case FilterIncludeGlobs:
		return &f.IncludeGlobs, nil
	case FilterExcludeGlobs:
		return &f.ExcludeGlobs, nil
	default:
		return nil, fmt.Errorf("config: unknown filter list kind %q", kind)
	}
}

// ListFilter returns the values of one filter list, sorted.
func ListFilter(c *Config, kind FilterListKind) ([]string, error) {
	ref, err := filterListRef(&c.Monitor.Filter, kind)
	if err != nil {
		return nil, err
	}
	out := append([]string(nil), (*ref)...)
	sort.Strings(out)
	return out, nil
}

// AddFilterRule appends value to the named filter list, validates the
// result (duplicate/overlap rejection), and persists the configuration.
func AddFilterRule(c *Config, kind FilterListKind, value string) error {
	ref, err := filterListRef(&c.Monitor.Filter, kind)
	if err != nil {
		return err
	}
	for _, v := range *ref {
		if v == value {
			return errors.NewConflictError(
				"Duplicate filter entry",
				fmt.Sprintf("%q is already present in %s", value, kind),
				"No change needed; the entry is already in effect",
				nil,
			)
		}
	}
	*ref = append(*ref, value)
	if err := validateFilterLists(c.Monitor.Filter); err != nil {
		*ref = (*ref)[:len(*ref)-1]
		return err
	}
	return Save(c)
}

// RemoveFilterRule removes value from the named filter list and persists
// the configuration. Removing a value that is not present is a no-op.
func RemoveFilterRule(c *Config, kind FilterListKind, value string) error {
	ref, err := filterListRef(&c.Monitor.Filter, kind)
	if err != nil {
		return err
	}
	out := (*ref)[:0]
	for _, v := range *ref {
		if v != value {
			out = append(out, v)
		}
	}
	*ref = out
	return Save(c)
}

// ListPriority returns a copy of the configured managed directories and
// their base priorities, as a map (no iteration order).
func ListPriority(c *Config) map[string]float64 {
	out := make(map[string]float64, len(c.Monitor.Priority.Dirs))
	for k, v := range c.Monitor.Priority.Dirs {
		out[k] = v
	}
	return out
}

// SetPriority sets (adding or overwriting) dir's base priority and persists.
func SetPriority(c *Config, dir string, base float64) error {
	if c.Monitor.Priority.Dirs == nil {
		c.Monitor.Priority.Dirs = map[string]float64{}
	}
	c.Monitor.Priority.Dirs[dir] = base
	return Save(c)
}

// RemovePriority removes dir from the managed-directory map and persists.
func RemovePriority(c *Config, dir string) error {
	delete(c.Monitor.Priority.Dirs, dir)
	if len(c.Monitor.Priority.Dirs) == 0 {
		return errors.NewConfigError(
			"Cannot remove the last managed directory",
			"monitor.priority.dirs must remain non-empty",
			"Add a replacement managed directory before removing this one",
			nil,
		)
	}
	return Save(c)
}
