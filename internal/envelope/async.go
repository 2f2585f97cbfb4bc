// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package envelope

import (
	"sync"

	"github.com/google/uuid"
)

// ProgressNotification is the RPC notifications/progress payload:
// job_id, progress in [0,1], a human message, and a timestamp (RFC3339,
// stamped by the caller so this package stays free of wall-clock calls).
type ProgressNotification struct {
	JobID     string  `json:"job_id"`
	Progress  float64 `json:"progress"`
	Message   string  `json:"message"`
	Timestamp string  `json:"timestamp"`
}

// AsyncQueued is the immediate response to a declared-async operation,
// returned before the work starts.
type AsyncQueued struct {
	JobID                  string `json:"job_id"`
	EstimatedRuntimeSeconds int   `json:"estimated_runtime_seconds"`
	Status                 string `json:"status"`
}

// NewJobID mints a job identifier for an asynchronous operation.
func NewJobID() string { return uuid.NewString() }

// JobTracker holds in-flight asynchronous jobs so the daemon/MCP server can
// reject a second concurrent run of the same operation.
type JobTracker struct {
	mu     sync.Mutex
	active map[string]bool
}

func NewJobTracker() *JobTracker {
	return &JobTracker{active: map[string]bool{}}
}

// TryStart marks key as running if it is not already; returns false if a
// job with the same key is already in flight.
func (t *JobTracker) TryStart(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.active[key] {
		return false
	}
	t.active[key] = true
	return true
}

// Finish clears the in-flight marker for key.
func (t *JobTracker) Finish(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.active, key)
}
