// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

import "testing"

func TestPrefixAppliedOnOpen(t *testing.T) {
	mock := NewMockDriver()
	wrapped := New(mock, "wks")
	col, err := wrapped.Open("nodes")
	if err != nil {
		t.Fatal(err)
	}
	if err := col.UpdateOne(Filter{"local_uri": "file://h/a"}, Document{"priority": 10}, true); err != nil {
		t.Fatal(err)
	}

	direct, _ := mock.Open("wks.nodes")
	n, err := direct.Count(Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Fatalf("expected the prefixed collection to hold the row, count=%d", n)
	}
}

func TestOpenRejectsEmptyName(t *testing.T) {
	wrapped := New(NewMockDriver(), "wks")
	if _, err := wrapped.Open(""); err == nil {
		t.Fatal("expected error for empty collection name")
	}
}

func TestUpsertThenFindOne(t *testing.T) {
	col, _ := NewMockDriver().Open("nodes")
	if err := col.UpdateOne(Filter{"local_uri": "a"}, Document{"local_uri": "a", "priority": 5.0}, true); err != nil {
		t.Fatal(err)
	}
	doc, ok, err := col.FindOne(Filter{"local_uri": "a"})
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	if doc["priority"] != 5.0 {
		t.Fatalf("got %+v", doc)
	}
}

func TestUpdateOneWithoutUpsertFailsWhenNoMatch(t *testing.T) {
	col, _ := NewMockDriver().Open("nodes")
	if err := col.UpdateOne(Filter{"local_uri": "missing"}, Document{"priority": 1.0}, false); err == nil {
		t.Fatal("expected error: no match and upsert=false")
	}
}

func TestUpdateOneMergesExistingFields(t *testing.T) {
	col, _ := NewMockDriver().Open("nodes")
	col.UpdateOne(Filter{"local_uri": "a"}, Document{"local_uri": "a", "priority": 1.0, "kind": "file"}, true)
	col.UpdateOne(Filter{"local_uri": "a"}, Document{"priority": 2.0}, true)
	doc, _, _ := col.FindOne(Filter{"local_uri": "a"})
	if doc["priority"] != 2.0 || doc["kind"] != "file" {
		t.Fatalf("expected merge to preserve kind, got %+v", doc)
	}
}

func TestDeleteOneAndDeleteMany(t *testing.T) {
	col, _ := NewMockDriver().Open("nodes")
	col.UpdateOne(Filter{"local_uri": "a"}, Document{"local_uri": "a", "group": "x"}, true)
	col.UpdateOne(Filter{"local_uri": "b"}, Document{"local_uri": "b", "group": "x"}, true)
	col.UpdateOne(Filter{"local_uri": "c"}, Document{"local_uri": "c", "group": "y"}, true)

	ok, err := col.DeleteOne(Filter{"local_uri": "a"})
	if err != nil || !ok {
		t.Fatalf("ok=%v err=%v", ok, err)
	}
	n, err := col.DeleteMany(Filter{"group": "x"})
	if err != nil || n != 1 {
		t.Fatalf("n=%d err=%v", n, err)
	}
	remaining, _ := col.Count(Filter{})
	if remaining != 1 {
		t.Fatalf("expected 1 remaining, got %d", remaining)
	}
}

func TestFindReturnsAllMatches(t *testing.T) {
	col, _ := NewMockDriver().Open("edges")
	col.UpdateOne(Filter{"_id": "1"}, Document{"_id": "1", "from": "a"}, true)
	col.UpdateOne(Filter{"_id": "2"}, Document{"_id": "2", "from": "a"}, true)
	col.UpdateOne(Filter{"_id": "3"}, Document{"_id": "3", "from": "b"}, true)

	docs, err := col.Find(Filter{"from": "a"})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
}
