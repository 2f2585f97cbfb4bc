// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package daemon implements the long-running watcher process: an
// exclusive lock with stale-PID recovery, a debounced fsnotify event loop
// feeding monitor/link sync, a database-subprocess guard, a JSON status
// heartbeat, and an optional Prometheus metrics endpoint.
package daemon

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/kraklabs/wks/internal/errors"
)

// Lock is an exclusive claim on {WKS_HOME}/daemon.lock, held for the
// daemon's lifetime.
type Lock struct {
	path string
}

// AcquireLock claims path, recovering a stale lock (recorded PID no
// longer alive) automatically. Returns an AlreadyRunning error if the
// recorded PID is live.
func AcquireLock(path string) (*Lock, error) {
	if data, err := os.ReadFile(path); err == nil {
		if pid, perr := strconv.Atoi(strings.TrimSpace(string(data))); perr == nil && processAlive(pid) {
			return nil, errors.NewAlreadyRunningError(
				"daemon already running",
				fmt.Sprintf("lock file %s names live PID %d", path, pid),
				"stop the running daemon first, or remove the lock file if you're certain it's stale", nil)
		}
		// Stale: recorded PID is gone (or unparsable). Reclaim the lock.
		os.Remove(path)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		if os.IsExist(err) {
			return nil, errors.NewAlreadyRunningError(
				"daemon already running",
				fmt.Sprintf("lock file %s was created by another process", path),
				"stop the running daemon first", nil)
		}
		return nil, errors.NewInternalError("cannot acquire daemon lock",
			err.Error(), "check permissions on "+path, err)
	}
	_, werr := f.WriteString(strconv.Itoa(os.Getpid()))
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		os.Remove(path)
		return nil, errors.NewInternalError("cannot acquire daemon lock",
			werr.Error(), "check permissions on "+path, werr)
	}
	return &Lock{path: path}, nil
}

// Release removes the lock file if it still names this process.
func (l *Lock) Release() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if pid, perr := strconv.Atoi(strings.TrimSpace(string(data))); perr == nil && pid != os.Getpid() {
		return nil // another process has since reclaimed it; don't touch
	}
	return os.Remove(l.path)
}

// processAlive reports whether pid names a live process, by sending the
// null signal (no-op, but fails with ESRCH if the process is gone).
func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
