// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package db implements the collection-oriented key/value abstraction: a
// handle per operation exposing find_one/find/update_one(upsert)/
// delete_one/delete_many/count, with collection names automatically
// prefixed by the configured database prefix. Two backends satisfy the
// same Driver interface: a buntdb-backed document store and an in-memory
// mock used for tests and for running without a live database.
package db

import (
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Document is a loosely typed record. Callers may set "_id" explicitly;
// if absent on insert/upsert, one is generated.
type Document map[string]any

// Filter selects documents by exact field equality. An empty filter
// matches every document in the collection.
type Filter map[string]any

// Collection is a scoped handle to one prefixed collection. Closing it
// releases the handle back to the driver (a no-op for backends with no
// pooled resources, but always safe to call).
type Collection interface {
	FindOne(f Filter) (Document, bool, error)
	Find(f Filter) ([]Document, error)
	UpdateOne(f Filter, update Document, upsert bool) error
	DeleteOne(f Filter) (bool, error)
	DeleteMany(f Filter) (int, error)
	Count(f Filter) (int, error)
	Close() error
}

// Driver is a database backend capable of opening prefixed collections.
type Driver interface {
	Open(collection string) (Collection, error)
	Close() error
}

// DB wraps a Driver and applies the configured collection-name prefix.
// Every collection name passed through DB.Open arrives at the driver
// already prefixed ("nodes" -> "<prefix>.nodes"); bare collection names
// below this layer are a caller bug, not a recoverable condition.
type DB struct {
	driver Driver
	prefix string
}

// New wraps driver with prefix. prefix must be non-empty (enforced by
// internal/config at load time, so collection access is never
// unprefixed).
func New(driver Driver, prefix string) *DB {
	return &DB{driver: driver, prefix: prefix}
}

// Open returns a scoped handle to the named collection, under the
// configured prefix.
func (d *DB) Open(collection string) (Collection, error) {
	if collection == "" {
		return nil, fmt.Errorf("db: collection name must not be empty")
	}
	return d.driver.Open(d.prefix + "." + collection)
}

// Close releases the underlying driver connection.
func (d *DB) Close() error { return d.driver.Close() }

// NewID generates a fresh document identifier.
func NewID() string { return uuid.NewString() }

// matches reports whether doc satisfies every field in f.
func matches(doc Document, f Filter) bool {
	for k, want := range f {
		got, ok := doc[k]
		if !ok || !equalValue(got, want) {
			return false
		}
	}
	return true
}

func equalValue(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

// sortedKeys returns m's keys in sorted order, for deterministic iteration
// over in-memory collections (mock backend and buntdb's in-process cache).
func sortedKeys(m map[string]Document) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
