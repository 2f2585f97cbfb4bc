// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package transform

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/kraklabs/wks/pkg/db"
)

func newTestCache(t *testing.T, maxSize int64) (*Cache, string) {
	t.Helper()
	col, err := db.NewMockDriver().Open("transform")
	if err != nil {
		t.Fatal(err)
	}
	baseDir := t.TempDir()
	reg := NewRegistry([]Engine{NewIdentityEngine("identity", "txt")})
	return New(col, reg, baseDir, maxSize), baseDir
}

func writeSourceFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "source.bin")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTransformMissInstallsArtifactAndRow(t *testing.T) {
	cache, baseDir := newTestCache(t, 0)
	src := writeSourceFile(t, "hello world")

	checksum, warning, err := cache.Transform("identity", src, nil)
	if err != nil {
		t.Fatal(err)
	}
	if warning != "" {
		t.Fatalf("unexpected warning: %s", warning)
	}
	if checksum == "" {
		t.Fatal("expected a non-empty checksum")
	}

	artifact := filepath.Join(baseDir, checksum+".txt")
	if _, err := os.Stat(artifact); err != nil {
		t.Fatalf("expected artifact at %s: %v", artifact, err)
	}

	row, found, err := cache.rows.FindOne(db.Filter{"checksum": checksum})
	if err != nil || !found {
		t.Fatalf("expected a row for checksum %s: found=%v err=%v", checksum, found, err)
	}
	if row["engine"] != "identity" {
		t.Fatalf("got %+v", row)
	}
}

func TestTransformHitReturnsSameChecksumAndTouchesAccess(t *testing.T) {
	cache, _ := newTestCache(t, 0)
	src := writeSourceFile(t, "repeatable content")

	first, _, err := cache.Transform("identity", src, nil)
	if err != nil {
		t.Fatal(err)
	}
	second, _, err := cache.Transform("identity", src, nil)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Fatalf("cache miss produced a different checksum: %s vs %s", first, second)
	}

	rows, err := cache.rows.Find(db.Filter{"checksum": first})
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected exactly one row, got %d (err=%v)", len(rows), err)
	}
}

func TestCatByChecksumStreamsArtifact(t *testing.T) {
	cache, _ := newTestCache(t, 0)
	src := writeSourceFile(t, "streamed content")

	checksum, _, err := cache.Transform("identity", src, nil)
	if err != nil {
		t.Fatal(err)
	}

	rc, size, err := cache.Cat(checksum)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "streamed content" || int64(len(data)) != size {
		t.Fatalf("got %q size=%d", data, size)
	}
}

func TestCatByFilePathUsesDefaultEngine(t *testing.T) {
	cache, _ := newTestCache(t, 0)
	dir := t.TempDir()
	src := filepath.Join(dir, "note.txt")
	if err := os.WriteFile(src, []byte("default-engine content"), 0o644); err != nil {
		t.Fatal(err)
	}

	rc, _, err := cache.Cat(src)
	if err != nil {
		t.Fatal(err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "default-engine content" {
		t.Fatalf("got %q", data)
	}
}

func TestResetRemovesRowsAndFiles(t *testing.T) {
	cache, baseDir := newTestCache(t, 0)
	src := writeSourceFile(t, "to be reset")
	checksum, _, err := cache.Transform("identity", src, nil)
	if err != nil {
		t.Fatal(err)
	}

	orphans, err := cache.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if len(orphans) != 0 {
		t.Fatalf("expected no orphans, got %v", orphans)
	}

	if count, _ := cache.rows.Count(db.Filter{}); count != 0 {
		t.Fatalf("expected 0 rows after reset, got %d", count)
	}
	if _, err := os.Stat(filepath.Join(baseDir, checksum+".txt")); !os.IsNotExist(err) {
		t.Fatalf("expected artifact removed, stat err=%v", err)
	}
}

func TestAuditRemovesRowWithMissingFile(t *testing.T) {
	cache, baseDir := newTestCache(t, 0)
	src := writeSourceFile(t, "audited content")
	checksum, _, err := cache.Transform("identity", src, nil)
	if err != nil {
		t.Fatal(err)
	}

	os.Remove(filepath.Join(baseDir, checksum+".txt"))

	rowsDeleted, filesDeleted, err := cache.Audit()
	if err != nil {
		t.Fatal(err)
	}
	if rowsDeleted != 1 || filesDeleted != 0 {
		t.Fatalf("got rowsDeleted=%d filesDeleted=%d", rowsDeleted, filesDeleted)
	}
	if count, _ := cache.rows.Count(db.Filter{}); count != 0 {
		t.Fatalf("expected row gone, count=%d", count)
	}
}

func TestAuditRemovesOrphanFile(t *testing.T) {
	cache, baseDir := newTestCache(t, 0)
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		t.Fatal(err)
	}
	orphanPath := filepath.Join(baseDir, "deadbeef.txt")
	if err := os.WriteFile(orphanPath, []byte("orphan"), 0o644); err != nil {
		t.Fatal(err)
	}

	rowsDeleted, filesDeleted, err := cache.Audit()
	if err != nil {
		t.Fatal(err)
	}
	if rowsDeleted != 0 || filesDeleted != 1 {
		t.Fatalf("got rowsDeleted=%d filesDeleted=%d", rowsDeleted, filesDeleted)
	}
	if _, err := os.Stat(orphanPath); !os.IsNotExist(err) {
		t.Fatalf("expected orphan file removed")
	}
}

func TestEvictionDropsLeastRecentlyAccessed(t *testing.T) {
	cache, _ := newTestCache(t, 10) // tiny cap forces eviction after the 2nd insert
	srcA := writeSourceFile(t, "aaaaaaaaaa")
	srcB := writeSourceFile(t, "bbbbbbbbbb")

	if _, _, err := cache.Transform("identity", srcA, nil); err != nil {
		t.Fatal(err)
	}
	if _, _, err := cache.Transform("identity", srcB, nil); err != nil {
		t.Fatal(err)
	}

	count, err := cache.rows.Count(db.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("expected eviction to leave exactly 1 row, got %d", count)
	}
}
