// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package monitor

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kraklabs/wks/internal/config"
	"github.com/kraklabs/wks/pkg/db"
	"github.com/kraklabs/wks/pkg/uri"
)

func testEngine(t *testing.T, dir string) (*Engine, db.Collection) {
	t.Helper()
	col, _ := db.NewMockDriver().Open("nodes")
	cfg := config.MonitorConfig{
		Priority: config.PriorityConfig{
			Dirs:                     map[string]float64{dir: 160.0},
			DepthMultiplier:          0.9,
			UnderscoreMultiplier:     0.5,
			OnlyUnderscoreMultiplier: 0.1,
			ExtensionWeights:         map[string]float64{},
		},
		Filter: config.FilterConfig{
			IncludePaths: []string{dir},
		},
		MaxDocuments: 100,
		MinPriority:  0.01,
	}
	return New(col, cfg), col
}

func TestSyncCreatesNode(t *testing.T) {
	dir := t.TempDir()
	note := filepath.Join(dir, "note.md")
	if err := os.WriteFile(note, []byte("# Test Note\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	eng, col := testEngine(t, dir)

	result, err := eng.Sync(note, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.FilesSynced != 1 {
		t.Fatalf("got %+v", result)
	}

	doc, ok, err := col.FindOne(db.Filter{"local_uri": uri.FromPath(note)})
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if doc["bytes"] != int64(12) {
		t.Fatalf("bytes = %v, want 12", doc["bytes"])
	}
	if doc["priority"] != 144.0 {
		t.Fatalf("priority = %v, want 144.0", doc["priority"])
	}
}

func TestResyncUnchangedFilePreservesTimestamp(t *testing.T) {
	dir := t.TempDir()
	note := filepath.Join(dir, "note.md")
	os.WriteFile(note, []byte("# Test Note\n"), 0o644)
	eng, col := testEngine(t, dir)

	eng.Sync(note, false)
	first, _, _ := col.FindOne(db.Filter{"local_uri": uri.FromPath(note)})

	time.Sleep(5 * time.Millisecond)
	eng.Sync(note, false)
	second, _, _ := col.FindOne(db.Filter{"local_uri": uri.FromPath(note)})

	if first["timestamp"] != second["timestamp"] {
		t.Fatalf("expected unchanged timestamp, got %v vs %v", first["timestamp"], second["timestamp"])
	}
}

func TestSyncDeletesRecordForMissingFile(t *testing.T) {
	dir := t.TempDir()
	note := filepath.Join(dir, "note.md")
	os.WriteFile(note, []byte("x"), 0o644)
	eng, col := testEngine(t, dir)
	eng.Sync(note, false)

	os.Remove(note)
	result, err := eng.Sync(note, false)
	if err != nil {
		t.Fatal(err)
	}
	if result.FilesSynced != 1 {
		t.Fatalf("expected deletion counted as synced, got %+v", result)
	}
	_, ok, _ := col.FindOne(db.Filter{"local_uri": uri.FromPath(note)})
	if ok {
		t.Fatal("expected record removed")
	}
}

func TestSyncMissingFileWithNoRecordWarns(t *testing.T) {
	dir := t.TempDir()
	eng, _ := testEngine(t, dir)
	result, err := eng.Sync(filepath.Join(dir, "ghost.md"), false)
	if err != nil {
		t.Fatal(err)
	}
	if result.FilesSynced != 0 || len(result.Errors) != 1 {
		t.Fatalf("got %+v", result)
	}
}

func TestCheckReportsPriorityWhenMonitored(t *testing.T) {
	dir := t.TempDir()
	eng, _ := testEngine(t, dir)
	res := eng.Check(filepath.Join(dir, "note.md"))
	if !res.Monitored || res.Priority == nil || *res.Priority != 144.0 {
		t.Fatalf("got %+v", res)
	}
}

func TestCheckUnmonitoredOmitsPriority(t *testing.T) {
	eng, _ := testEngine(t, t.TempDir())
	res := eng.Check("/etc/hosts")
	if res.Monitored || res.Priority != nil {
		t.Fatalf("got %+v", res)
	}
}

func TestPruneDropsLowestPriorityFirst(t *testing.T) {
	dir := t.TempDir()
	col, _ := db.NewMockDriver().Open("nodes")
	cfg := config.MonitorConfig{
		Priority: config.PriorityConfig{
			Dirs:                     map[string]float64{dir: 10.0},
			DepthMultiplier:          1.0,
			UnderscoreMultiplier:     1.0,
			OnlyUnderscoreMultiplier: 1.0,
			ExtensionWeights:         map[string]float64{},
		},
		Filter:       config.FilterConfig{IncludePaths: []string{dir}},
		MaxDocuments: 2,
		MinPriority:  0,
	}
	eng := New(col, cfg)

	for i, p := range []float64{5.0, 1.0, 3.0} {
		col.UpdateOne(db.Filter{"local_uri": uriFor(i)}, db.Document{"local_uri": uriFor(i), "priority": p}, true)
	}
	if err := eng.pruneIfNeeded(); err != nil {
		t.Fatal(err)
	}
	count, _ := col.Count(db.Filter{})
	if count != 2 {
		t.Fatalf("expected 2 remaining, got %d", count)
	}
	_, stillThere, _ := col.FindOne(db.Filter{"local_uri": uriFor(1)})
	if stillThere {
		t.Fatal("expected the lowest-priority row (1.0) to be pruned")
	}
}

func uriFor(i int) string {
	return uri.FromPath(filepath.Join(string(rune('a'+i))+"dir", "f.md"))
}
