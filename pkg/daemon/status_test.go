// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package daemon

import (
	"path/filepath"
	"testing"
)

func TestWriteAndReadStatusRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.json")
	want := Status{
		PID: 1234, Running: true, RestrictDir: "/vault", LogPath: "/log",
		LastSync: "2026-01-01T00:00:00Z",
		Warnings: []StatusEntry{{Timestamp: "2026-01-01T00:00:00Z", Message: "slow sync"}},
		Errors:   []StatusEntry{},
	}
	if err := WriteStatus(path, want); err != nil {
		t.Fatal(err)
	}
	got, found, err := ReadStatus(path)
	if err != nil || !found {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if got.PID != want.PID || got.RestrictDir != want.RestrictDir || len(got.Warnings) != 1 {
		t.Fatalf("got %+v", got)
	}
}

func TestReadStatusMissingFile(t *testing.T) {
	_, found, err := ReadStatus(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil || found {
		t.Fatalf("found=%v err=%v", found, err)
	}
}
