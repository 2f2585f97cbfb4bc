// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package daemon

import "testing"

func TestQueueCoalescesLatestEventPerPath(t *testing.T) {
	q := NewEventQueue(0)
	q.Push("/a", EventCreateOrModify)
	q.Push("/a", EventDelete)
	q.Push("/b", EventCreateOrModify)

	drained := q.Drain()
	if len(drained) != 2 {
		t.Fatalf("got %d entries, want 2: %+v", len(drained), drained)
	}
	if drained["/a"] != EventDelete {
		t.Fatalf("expected latest event to win, got %v", drained["/a"])
	}
	if q.Len() != 0 {
		t.Fatalf("expected queue empty after drain, got %d", q.Len())
	}
}

func TestQueueCapacityDropsNewPaths(t *testing.T) {
	q := NewEventQueue(1)
	q.Push("/a", EventCreateOrModify)
	q.Push("/b", EventCreateOrModify) // should be dropped, queue full
	q.Push("/a", EventDelete)         // update to existing path still allowed

	drained := q.Drain()
	if len(drained) != 1 {
		t.Fatalf("got %d entries, want 1: %+v", len(drained), drained)
	}
	if drained["/a"] != EventDelete {
		t.Fatalf("got %+v", drained)
	}
}

func TestDrainOnEmptyQueueReturnsNil(t *testing.T) {
	q := NewEventQueue(0)
	if drained := q.Drain(); drained != nil {
		t.Fatalf("expected nil, got %+v", drained)
	}
}
