// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package daemon

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/wks/internal/config"
	"github.com/kraklabs/wks/pkg/db"
	"github.com/kraklabs/wks/pkg/monitor"
	"github.com/kraklabs/wks/pkg/uri"
	"github.com/kraklabs/wks/pkg/vault"
)

func testConfig(vaultDir string) *config.Config {
	return &config.Config{
		Monitor: config.MonitorConfig{
			Priority: config.PriorityConfig{
				Dirs:                     map[string]float64{vaultDir: 100},
				DepthMultiplier:          1,
				UnderscoreMultiplier:     1,
				OnlyUnderscoreMultiplier: 1,
			},
			Filter:       config.FilterConfig{IncludePaths: []string{vaultDir}},
			MaxDocuments: 1000,
			MinPriority:  0,
		},
		Vault:    config.VaultConfig{BasePath: vaultDir, Backend: "plain"},
		Database: config.DatabaseConfig{Local: false},
		Daemon:   config.DaemonConfig{SyncIntervalSecs: 1, EventQueueSize: 100, ShutdownGraceSecs: 1},
		Log:      config.LogConfig{Path: filepath.Join(vaultDir, "log")},
	}
}

func testDaemon(t *testing.T, vaultDir string) *Daemon {
	t.Helper()
	nodes, err := db.NewMockDriver().Open("nodes")
	if err != nil {
		t.Fatal(err)
	}
	edges, err := db.NewMockDriver().Open("edges")
	if err != nil {
		t.Fatal(err)
	}
	cfg := testConfig(vaultDir)
	monitorEng := monitor.New(nodes, cfg.Monitor)
	vaultEng := vault.New(edges, vaultDir, cfg.Vault.Backend)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 100}))
	return New(cfg, monitorEng, nodes, vaultEng, t.TempDir(), "", logger)
}

func TestApplyEventCreateSyncsMonitorAndLinks(t *testing.T) {
	vaultDir := t.TempDir()
	d := testDaemon(t, vaultDir)

	note := filepath.Join(vaultDir, "A.md")
	if err := os.WriteFile(note, []byte("[[B]]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	d.applyEvent(note, EventCreateOrModify)

	abs, err := filepath.Abs(note)
	if err != nil {
		t.Fatal(err)
	}
	nodes, err := d.nodes.Find(db.Filter{"local_uri": uri.FromPath(abs)})
	if err != nil || len(nodes) != 1 {
		t.Fatalf("expected a monitor node, got %d (err=%v)", len(nodes), err)
	}

	edges, err := d.vault.Check(note, false)
	if err != nil {
		t.Fatal(err)
	}
	if len(edges.Edges) != 1 {
		t.Fatalf("expected 1 parsed link, got %+v", edges.Edges)
	}
}

func TestApplyEventDeleteRemovesDescendants(t *testing.T) {
	vaultDir := t.TempDir()
	d := testDaemon(t, vaultDir)

	sub := filepath.Join(vaultDir, "Projects")
	os.MkdirAll(sub, 0o755)
	fileA := filepath.Join(sub, "a.md")
	fileB := filepath.Join(sub, "b.md")
	os.WriteFile(fileA, []byte("a"), 0o644)
	os.WriteFile(fileB, []byte("b"), 0o644)

	d.applyEvent(fileA, EventCreateOrModify)
	d.applyEvent(fileB, EventCreateOrModify)

	// Two file nodes plus the monitor's __meta__ (last_sync) record.
	if count, _ := d.nodes.Count(db.Filter{}); count != 3 {
		t.Fatalf("expected 2 file nodes + meta record before delete, got %d", count)
	}

	os.RemoveAll(sub)
	d.applyEvent(sub, EventDelete)

	if count, _ := d.nodes.Count(db.Filter{}); count != 1 {
		t.Fatalf("expected descendants removed leaving only the meta record, got %d nodes", count)
	}
}
