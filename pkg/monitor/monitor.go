// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package monitor implements the filesystem-monitor engine: check/sync
// against the node store, with the priority and filter engines deciding
// what is tracked and at what weight.
package monitor

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/kraklabs/wks/internal/config"
	"github.com/kraklabs/wks/pkg/db"
	"github.com/kraklabs/wks/pkg/filter"
	"github.com/kraklabs/wks/pkg/priority"
	"github.com/kraklabs/wks/pkg/uri"
)

// Engine evaluates filter and priority rules and maintains the nodes
// collection to match them.
type Engine struct {
	nodes       db.Collection
	filterEng   *filter.Engine
	priorityCfg priority.Config
	maxDocs     int
	minPriority float64
	now         func() time.Time
}

// New constructs an Engine from the monitor section of the loaded config.
func New(nodes db.Collection, cfg config.MonitorConfig) *Engine {
	return &Engine{
		nodes:     nodes,
		filterEng: filter.New(toFilterConfig(cfg.Filter)),
		priorityCfg: priority.Config{
			Dirs:                     cfg.Priority.Dirs,
			DepthMultiplier:          cfg.Priority.DepthMultiplier,
			UnderscoreMultiplier:     cfg.Priority.UnderscoreMultiplier,
			OnlyUnderscoreMultiplier: cfg.Priority.OnlyUnderscoreMultiplier,
			ExtensionWeights:         cfg.Priority.ExtensionWeights,
		},
		maxDocs:     cfg.MaxDocuments,
		minPriority: cfg.MinPriority,
		now:         time.Now,
	}
}

func toFilterConfig(f config.FilterConfig) filter.Config {
	return filter.Config{
		IncludePaths:    f.IncludePaths,
		ExcludePaths:    f.ExcludePaths,
		IncludeDirnames: f.IncludeDirnames,
		ExcludeDirnames: f.ExcludeDirnames,
		IncludeGlobs:    f.IncludeGlobs,
		ExcludeGlobs:    f.ExcludeGlobs,
	}
}

// CheckResult is the outcome of Check.
type CheckResult struct {
	Path      string
	Monitored bool
	Priority  *float64
	Trace     []filter.TraceStep
}

// Check reports whether path is monitored and, if so, its priority.
func (e *Engine) Check(path string) CheckResult {
	abs := absOrSelf(path)
	decision := e.filterEng.IsMonitored(abs)
	result := CheckResult{Path: abs, Monitored: decision.Monitored, Trace: decision.Trace}
	if decision.Monitored {
		if p, err := priority.Priority(abs, e.priorityCfg); err == nil {
			result.Priority = &p
		}
	}
	return result
}

// SyncResult is the outcome of Sync.
type SyncResult struct {
	FilesSynced  int
	FilesSkipped int
	Errors       []string
}

// Sync brings the node store in line with disk state for path.
func (e *Engine) Sync(path string, recursive bool) (SyncResult, error) {
	abs := absOrSelf(path)
	var result SyncResult
	defer e.touchLastSync()

	info, statErr := os.Lstat(abs)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			deleted, err := e.deleteByPath(abs)
			if err != nil {
				return result, err
			}
			if deleted {
				result.FilesSynced = 1
			} else {
				result.FilesSkipped = 1
				result.Errors = append(result.Errors, fmt.Sprintf("%s: not found, no record", abs))
			}
			return result, nil
		}
		return result, statErr
	}

	switch {
	case info.IsDir():
		e.syncDir(abs, recursive, &result)
	default:
		e.syncFile(abs, &result)
	}

	if err := e.pruneIfNeeded(); err != nil {
		result.Errors = append(result.Errors, err.Error())
	}
	return result, nil
}

// metaDocID is the singleton record's document key: it holds last_sync.
const metaDocID = "__meta__"

// touchLastSync records the sync time on the nodes collection's singleton
// meta record.
func (e *Engine) touchLastSync() {
	e.nodes.UpdateOne(db.Filter{"_id": metaDocID}, db.Document{
		"_id":       metaDocID,
		"last_sync": e.now().UTC().Format(time.RFC3339),
	}, true)
}

// LastSync returns the last recorded sync time, if any.
func (e *Engine) LastSync() (string, bool) {
	doc, ok, err := e.nodes.FindOne(db.Filter{"_id": metaDocID})
	if err != nil || !ok {
		return "", false
	}
	ts, _ := doc["last_sync"].(string)
	return ts, ts != ""
}

func (e *Engine) syncDir(dir string, recursive bool, result *SyncResult) {
	if recursive {
		filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", p, err))
				return nil
			}
			if d.IsDir() {
				if p != dir {
					decision := e.filterEng.IsMonitored(p)
					if !decision.Monitored {
						return fs.SkipDir
					}
				}
				return nil
			}
			e.syncFile(p, result)
			return nil
		})
		return
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", dir, err))
		return
	}
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		e.syncFile(filepath.Join(dir, ent.Name()), result)
	}
}

func (e *Engine) syncFile(path string, result *SyncResult) {
	decision := e.filterEng.IsMonitored(path)
	if !decision.Monitored {
		deleted, err := e.deleteByPath(path)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
			return
		}
		if !deleted {
			result.FilesSkipped++
		} else {
			result.FilesSynced++
		}
		return
	}

	p, err := priority.Priority(path, e.priorityCfg)
	if err != nil || p < e.minPriority {
		deleted, derr := e.deleteByPath(path)
		if derr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, derr))
			return
		}
		if deleted {
			result.FilesSynced++
		} else {
			result.FilesSkipped++
		}
		return
	}

	checksum, size, err := checksumFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
		return
	}

	localURI := uri.FromPath(path)
	existing, found, err := e.nodes.FindOne(db.Filter{"local_uri": localURI})
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
		return
	}

	timestamp := e.now().UTC().Format(time.RFC3339)
	if found {
		sameChecksum := fmt.Sprint(existing["checksum"]) == checksum
		sameMTime := fmt.Sprint(existing["mtime"]) == info.ModTime().UTC().Format(time.RFC3339)
		if sameChecksum && sameMTime {
			if ts, ok := existing["timestamp"].(string); ok {
				timestamp = ts
			}
		}
	}

	doc := db.Document{
		"local_uri": localURI,
		"checksum":  checksum,
		"bytes":     size,
		"priority":  p,
		"timestamp": timestamp,
		"mtime":     info.ModTime().UTC().Format(time.RFC3339),
	}
	if found {
		if rv, ok := existing["remote_uri"]; ok {
			doc["remote_uri"] = rv
		}
	}

	if err := e.nodes.UpdateOne(db.Filter{"local_uri": localURI}, doc, true); err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", path, err))
		return
	}
	result.FilesSynced++
}

func (e *Engine) deleteByPath(path string) (bool, error) {
	return e.nodes.DeleteOne(db.Filter{"local_uri": uri.FromPath(path)})
}

// pruneIfNeeded drops lowest-priority nodes until count <= maxDocs.
func (e *Engine) pruneIfNeeded() error {
	if e.maxDocs <= 0 {
		return nil
	}
	all, err := e.nodes.Find(db.Filter{})
	if err != nil {
		return err
	}
	docs := make([]db.Document, 0, len(all))
	for _, d := range all {
		if _, isMeta := d["local_uri"]; isMeta {
			docs = append(docs, d)
		}
	}
	if len(docs) <= e.maxDocs {
		return nil
	}
	sort.SliceStable(docs, func(i, j int) bool {
		pi, _ := docs[i]["priority"].(float64)
		pj, _ := docs[j]["priority"].(float64)
		if pi != pj {
			return pi < pj
		}
		return fmt.Sprint(docs[i]["local_uri"]) < fmt.Sprint(docs[j]["local_uri"])
	})
	excess := len(docs) - e.maxDocs
	for i := 0; i < excess && i < len(docs); i++ {
		if _, err := e.nodes.DeleteOne(db.Filter{"local_uri": docs[i]["local_uri"]}); err != nil {
			return err
		}
	}
	return nil
}

func absOrSelf(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}
