// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package vault

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/wks/pkg/db"
)

func TestStatusFlagsVaultTargetOutsideVault(t *testing.T) {
	col, _ := db.NewMockDriver().Open("edges")
	eng := New(col, t.TempDir(), "plain")

	col.UpdateOne(db.Filter{"_id": "1"}, db.Document{
		"_id": "1", "from_uri": "file://host/outside/note.md", "to_uri": "vault:///B.md",
	}, true)

	report, err := eng.Status()
	if err != nil {
		t.Fatal(err)
	}
	if len(report.Issues) != 1 {
		t.Fatalf("expected 1 issue, got %+v", report.Issues)
	}
}

func TestStatusCountsVaultScopedEdges(t *testing.T) {
	col, _ := db.NewMockDriver().Open("edges")
	eng := New(col, t.TempDir(), "plain")
	col.UpdateOne(db.Filter{"_id": "1"}, db.Document{
		"_id": "1", "from_uri": "vault:///A.md", "to_uri": "vault:///B.md",
	}, true)

	report, err := eng.Status()
	if err != nil {
		t.Fatal(err)
	}
	if report.VaultEdges != 1 || len(report.Issues) != 0 {
		t.Fatalf("got %+v", report)
	}
}

func TestSyncMirrorsExternalTargetUnderObsidianBackend(t *testing.T) {
	vaultDir := t.TempDir()
	externalDir := t.TempDir()
	externalFile := filepath.Join(externalDir, "ext.md")
	os.WriteFile(externalFile, []byte("content"), 0o644)

	source := filepath.Join(vaultDir, "A.md")
	os.WriteFile(source, []byte("[["+externalFile+"]]\n"), 0o644)

	col, _ := db.NewMockDriver().Open("edges")
	eng := New(col, vaultDir, "obsidian")

	if _, err := eng.Sync(source, false); err != nil {
		t.Fatal(err)
	}

	mirror := filepath.Join(vaultDir, LinksDirName)
	if _, err := os.Stat(mirror); err != nil {
		t.Fatalf("expected mirror directory to exist: %v", err)
	}
}
