// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package daemon

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/kraklabs/wks/internal/errors"
)

func TestAcquireLockThenRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.lock")
	lock, err := AcquireLock(path)
	if err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strconv.Itoa(os.Getpid()) != string(data) {
		t.Fatalf("lock file should name our own PID, got %q", data)
	}
	if err := lock.Release(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected lock file removed after release")
	}
}

func TestAcquireLockFailsWhenPIDIsLive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.lock")
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		t.Fatal(err)
	}
	_, err := AcquireLock(path)
	if err == nil {
		t.Fatal("expected an error when the lock names a live PID")
	}
	ue := errors.AsUserError(err)
	if ue == nil || ue.Kind != errors.KindAlreadyRunning {
		t.Fatalf("expected AlreadyRunning, got %+v", err)
	}
}

func TestAcquireLockReclaimsStalePID(t *testing.T) {
	path := filepath.Join(t.TempDir(), "daemon.lock")
	// PID 0 is never a valid live process to signal from userspace.
	if err := os.WriteFile(path, []byte("0"), 0o600); err != nil {
		t.Fatal(err)
	}
	lock, err := AcquireLock(path)
	if err != nil {
		t.Fatalf("expected stale lock to be reclaimed, got %v", err)
	}
	lock.Release()
}
