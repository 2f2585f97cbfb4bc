// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package filter implements the two-phase monitored/excluded decision:
// root-match phase, then name/glob phase with an include-reverses-exclude
// override. Every decision returns a trace of the rules evaluated, used
// by `monitor check`.
package filter

import (
	"path/filepath"
)

// Config lists the include/exclude rules. All paths are expected to be
// canonicalized (cleaned, absolute) by the loader before reaching this
// package; Engine does not canonicalize itself.
type Config struct {
	IncludePaths    []string
	ExcludePaths    []string
	IncludeDirnames []string
	ExcludeDirnames []string
	IncludeGlobs    []string
	ExcludeGlobs    []string
}

// RuleKind names which rule list a trace step came from.
type RuleKind string

const (
	RuleRootInclude   RuleKind = "root_include"
	RuleRootExclude   RuleKind = "root_exclude"
	RuleRootNoMatch   RuleKind = "root_no_match"
	RuleExcludeDir    RuleKind = "exclude_dirname"
	RuleExcludeGlob   RuleKind = "exclude_glob"
	RuleIncludeDir    RuleKind = "include_dirname"
	RuleIncludeGlob   RuleKind = "include_glob"
)

// TraceStep records one rule evaluated during the decision, and whether it
// fired (matched).
type TraceStep struct {
	Kind    RuleKind
	Rule    string
	Fired   bool
}

// Decision is the result of IsMonitored: whether path is monitored, and the
// ordered trace of rules evaluated to reach that answer.
type Decision struct {
	Monitored bool
	Trace     []TraceStep
}

// Engine evaluates the two-phase filter decision against a Config.
type Engine struct {
	cfg Config
}

func New(cfg Config) *Engine { return &Engine{cfg: cfg} }

// IsMonitored decides whether path is monitored.
func (e *Engine) IsMonitored(path string) Decision {
	clean := filepath.Clean(path)
	var trace []TraceStep

	// Phase 1 — root match: walk ancestors, self first.
	includeSet := toSet(e.cfg.IncludePaths)
	excludeSet := toSet(e.cfg.ExcludePaths)

	cur := clean
	rootDecided := false
	rootIncluded := false
	for {
		if excludeSet[cur] {
			trace = append(trace, TraceStep{Kind: RuleRootExclude, Rule: cur, Fired: true})
			rootDecided = true
			rootIncluded = false
			break
		}
		if includeSet[cur] {
			trace = append(trace, TraceStep{Kind: RuleRootInclude, Rule: cur, Fired: true})
			rootDecided = true
			rootIncluded = true
			break
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		cur = parent
	}

	if !rootDecided {
		trace = append(trace, TraceStep{Kind: RuleRootNoMatch, Fired: true})
		return Decision{Monitored: false, Trace: trace}
	}
	if !rootIncluded {
		return Decision{Monitored: false, Trace: trace}
	}

	// Phase 2 — name/glob.
	base := filepath.Base(clean)
	parentBase := filepath.Base(filepath.Dir(clean))

	tentativelyExcluded := false
	for _, d := range e.cfg.ExcludeDirnames {
		fired := d == parentBase
		trace = append(trace, TraceStep{Kind: RuleExcludeDir, Rule: d, Fired: fired})
		if fired {
			tentativelyExcluded = true
		}
	}
	for _, g := range e.cfg.ExcludeGlobs {
		fired := globMatches(g, clean) || globMatches(g, base)
		trace = append(trace, TraceStep{Kind: RuleExcludeGlob, Rule: g, Fired: fired})
		if fired {
			tentativelyExcluded = true
		}
	}

	if !tentativelyExcluded {
		return Decision{Monitored: true, Trace: trace}
	}

	reversed := false
	for _, d := range e.cfg.IncludeDirnames {
		fired := d == parentBase
		trace = append(trace, TraceStep{Kind: RuleIncludeDir, Rule: d, Fired: fired})
		if fired {
			reversed = true
		}
	}
	for _, g := range e.cfg.IncludeGlobs {
		fired := globMatches(g, clean) || globMatches(g, base)
		trace = append(trace, TraceStep{Kind: RuleIncludeGlob, Rule: g, Fired: fired})
		if fired {
			reversed = true
		}
	}

	return Decision{Monitored: reversed, Trace: trace}
}

func toSet(items []string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[filepath.Clean(it)] = true
	}
	return m
}

func globMatches(pattern, target string) bool {
	ok, err := filepath.Match(pattern, target)
	return err == nil && ok
}
