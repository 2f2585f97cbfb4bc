// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package daemon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fsnotify/fsnotify"

	"github.com/kraklabs/wks/internal/config"
	"github.com/kraklabs/wks/pkg/filter"
)

func TestRegisterWatchersSkipsExcludedDir(t *testing.T) {
	root := t.TempDir()
	included := filepath.Join(root, "docs")
	excluded := filepath.Join(root, "node_modules", "pkg")
	os.MkdirAll(included, 0o755)
	os.MkdirAll(excluded, 0o755)

	filterEng := filter.New(filterConfigFrom(config.FilterConfig{
		IncludePaths:    []string{root},
		ExcludeDirnames: []string{"node_modules"},
	}))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatal(err)
	}
	defer watcher.Close()

	count, warnings := registerWatchers(watcher, []string{root}, filterEng)
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	// root + docs + node_modules; node_modules/pkg is excluded because the
	// dirname rule matches the immediate parent's basename.
	if count != 3 {
		t.Fatalf("got %d watched dirs, want 3", count)
	}
	if list := watcher.WatchList(); containsPath(list, excluded) {
		t.Fatalf("excluded dir should not be watched: %v", list)
	}
	if list := watcher.WatchList(); !containsPath(list, included) {
		t.Fatalf("included dir should be watched: %v", list)
	}
}

func containsPath(list []string, want string) bool {
	for _, p := range list {
		if p == want {
			return true
		}
	}
	return false
}

func TestDescendantsFiltersByPrefix(t *testing.T) {
	known := []string{"/vault/a.md", "/vault/sub/b.md", "/other/c.md"}
	got := descendants(known, "/vault")
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
}
