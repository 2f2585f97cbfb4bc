// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package daemon

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/kraklabs/wks/internal/config"
	"github.com/kraklabs/wks/pkg/filter"
)

func filterConfigFrom(f config.FilterConfig) filter.Config {
	return filter.Config{
		IncludePaths:    f.IncludePaths,
		ExcludePaths:    f.ExcludePaths,
		IncludeDirnames: f.IncludeDirnames,
		ExcludeDirnames: f.ExcludeDirnames,
		IncludeGlobs:    f.IncludeGlobs,
		ExcludeGlobs:    f.ExcludeGlobs,
	}
}

// registerWatchers adds every monitored directory under each root to
// watcher, pruning descent into directories the filter engine excludes.
// Returns the number of directories watched.
func registerWatchers(watcher *fsnotify.Watcher, roots []string, filterEng *filter.Engine) (int, []string) {
	count := 0
	var warnings []string
	seen := map[string]bool{}

	for _, root := range roots {
		abs, err := filepath.Abs(root)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", root, err))
			continue
		}
		filepath.WalkDir(abs, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsPermission(err) {
					return fs.SkipDir
				}
				warnings = append(warnings, fmt.Sprintf("%s: %v", p, err))
				return nil
			}
			if !d.IsDir() {
				return nil
			}
			if p != abs {
				decision := filterEng.IsMonitored(p)
				if !decision.Monitored {
					return fs.SkipDir
				}
			}
			if seen[p] {
				return nil
			}
			seen[p] = true
			if err := watcher.Add(p); err != nil {
				warnings = append(warnings, fmt.Sprintf("watch %s: %v", p, err))
				if os.IsPermission(err) {
					return fs.SkipDir
				}
				return nil
			}
			count++
			return nil
		})
	}
	return count, warnings
}

// descendants filters knownPaths (filesystem paths resolved from the
// monitor store's local_uri field) down to those beneath dir, used to
// enumerate what a directory move removed once the old subtree no
// longer exists on disk.
func descendants(knownPaths []string, dir string) []string {
	prefix := filepath.Clean(dir) + string(filepath.Separator)
	var out []string
	for _, p := range knownPaths {
		if len(p) > len(prefix) && p[:len(prefix)] == prefix {
			out = append(out, p)
		}
	}
	return out
}
