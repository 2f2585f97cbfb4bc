// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package filter

import "testing"

func TestRootNoMatchExcludes(t *testing.T) {
	e := New(Config{})
	d := e.IsMonitored("/home/user/Desktop/note.md")
	if d.Monitored {
		t.Fatal("expected not monitored: no root rule matches")
	}
	if len(d.Trace) != 1 || d.Trace[0].Kind != RuleRootNoMatch {
		t.Fatalf("trace = %+v", d.Trace)
	}
}

func TestRootIncludeThenMonitored(t *testing.T) {
	e := New(Config{IncludePaths: []string{"/home/user/Desktop"}})
	d := e.IsMonitored("/home/user/Desktop/note.md")
	if !d.Monitored {
		t.Fatalf("expected monitored, trace=%+v", d.Trace)
	}
}

func TestRootExcludeWinsAtSameAncestor(t *testing.T) {
	e := New(Config{
		IncludePaths: []string{"/home/user/Desktop"},
		ExcludePaths: []string{"/home/user/Desktop"},
	})
	// Desktop itself is both included and excluded; walk finds the deepest
	// ancestor match first, which is Desktop — exclude is checked first.
	d := e.IsMonitored("/home/user/Desktop/note.md")
	if d.Monitored {
		t.Fatal("expected exclude to win at the matching ancestor")
	}
}

func TestRootExcludeDeeperThanInclude(t *testing.T) {
	e := New(Config{
		IncludePaths: []string{"/home/user/Desktop"},
		ExcludePaths: []string{"/home/user/Desktop/Private"},
	})
	d := e.IsMonitored("/home/user/Desktop/Private/secret.md")
	if d.Monitored {
		t.Fatal("expected excluded: deeper ancestor wins during the walk")
	}
	d2 := e.IsMonitored("/home/user/Desktop/note.md")
	if !d2.Monitored {
		t.Fatal("expected monitored outside the excluded subtree")
	}
}

func TestExcludeDirnamePhase2(t *testing.T) {
	e := New(Config{
		IncludePaths:    []string{"/home/user/Desktop"},
		ExcludeDirnames: []string{"node_modules"},
	})
	d := e.IsMonitored("/home/user/Desktop/node_modules/index.js")
	if d.Monitored {
		t.Fatal("expected excluded by dirname")
	}
}

func TestExcludeGlobOverriddenByIncludeGlob(t *testing.T) {
	// A path matching exclude_globs but also include_globs is monitored.
	e := New(Config{
		IncludePaths: []string{"/home/user/Desktop"},
		ExcludeGlobs: []string{"*.tmp"},
		IncludeGlobs: []string{"keep.tmp"},
	})
	d := e.IsMonitored("/home/user/Desktop/keep.tmp")
	if !d.Monitored {
		t.Fatalf("expected include_globs to reverse exclude_globs, trace=%+v", d.Trace)
	}

	d2 := e.IsMonitored("/home/user/Desktop/other.tmp")
	if d2.Monitored {
		t.Fatal("expected other.tmp to remain excluded")
	}
}

func TestIncludeDirnameOverridesExcludeGlob(t *testing.T) {
	e := New(Config{
		IncludePaths:    []string{"/home/user/Desktop"},
		ExcludeGlobs:    []string{"*.log"},
		IncludeDirnames: []string{"keep"},
	})
	d := e.IsMonitored("/home/user/Desktop/keep/debug.log")
	if !d.Monitored {
		t.Fatalf("expected include_dirnames to reverse exclude_globs, trace=%+v", d.Trace)
	}
}

func TestNoPhase2RulesMonitoredByDefault(t *testing.T) {
	e := New(Config{IncludePaths: []string{"/home/user/Desktop"}})
	d := e.IsMonitored("/home/user/Desktop/a/b/c.md")
	if !d.Monitored {
		t.Fatal("expected monitored: no phase-2 rule tentatively excludes it")
	}
}
