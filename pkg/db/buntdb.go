// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package db

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tidwall/buntdb"
)

const (
	autoShrinkSizeBytes = 1 << 20 // 1 MiB
	collectionSep       = "##"
)

// BuntDriver is the production Driver, backed by an embedded buntdb file.
// Keys are namespaced "<collection>##<id>" so collections never collide,
// matching the makePath scheme used for the same purpose elsewhere in the
// example corpus.
type BuntDriver struct {
	db *buntdb.DB
}

var _ Driver = (*BuntDriver)(nil)

// OpenBuntDriver opens (creating if absent) a buntdb file at path.
func OpenBuntDriver(path string) (*BuntDriver, error) {
	bdb, err := buntdb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("db: open buntdb at %q: %w", path, err)
	}
	bdb.SetConfig(buntdb.Config{
		SyncPolicy:           buntdb.EverySecond,
		AutoShrinkMinSize:    autoShrinkSizeBytes,
		AutoShrinkPercentage: 50,
	})
	return &BuntDriver{db: bdb}, nil
}

func (d *BuntDriver) Open(collection string) (Collection, error) {
	return &buntCollection{db: d.db, collection: collection}, nil
}

func (d *BuntDriver) Close() error { return d.db.Close() }

func makeKey(collection, id string) string {
	return collection + collectionSep + id
}

func scanPrefix(collection string) string {
	return collection + collectionSep + "*"
}

type buntCollection struct {
	db         *buntdb.DB
	collection string
}

func (c *buntCollection) scanAll() (map[string]Document, error) {
	docs := make(map[string]Document)
	err := c.db.View(func(tx *buntdb.Tx) error {
		var scanErr error
		tx.AscendKeys(scanPrefix(c.collection), func(key, value string) bool {
			var doc Document
			if scanErr = json.Unmarshal([]byte(value), &doc); scanErr != nil {
				return false
			}
			id := strings.TrimPrefix(key, c.collection+collectionSep)
			docs[id] = doc
			return true
		})
		return scanErr
	})
	if err != nil {
		return nil, fmt.Errorf("db: scan %q: %w", c.collection, err)
	}
	return docs, nil
}

func (c *buntCollection) FindOne(f Filter) (Document, bool, error) {
	docs, err := c.scanAll()
	if err != nil {
		return nil, false, err
	}
	for _, id := range sortedKeys(docs) {
		if matches(docs[id], f) {
			return docs[id], true, nil
		}
	}
	return nil, false, nil
}

func (c *buntCollection) Find(f Filter) ([]Document, error) {
	docs, err := c.scanAll()
	if err != nil {
		return nil, err
	}
	var out []Document
	for _, id := range sortedKeys(docs) {
		if matches(docs[id], f) {
			out = append(out, docs[id])
		}
	}
	return out, nil
}

func (c *buntCollection) UpdateOne(f Filter, update Document, upsert bool) error {
	docs, err := c.scanAll()
	if err != nil {
		return err
	}
	for _, id := range sortedKeys(docs) {
		if matches(docs[id], f) {
			return c.put(id, mergeDoc(docs[id], update))
		}
	}
	if !upsert {
		return fmt.Errorf("db: no document in %q matches filter", c.collection)
	}
	merged := mergeDoc(Document{}, update)
	for k, v := range f {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	id, _ := merged["_id"].(string)
	if id == "" {
		id = NewID()
		merged["_id"] = id
	}
	return c.put(id, merged)
}

func (c *buntCollection) put(id string, doc Document) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("db: marshal document: %w", err)
	}
	return c.db.Update(func(tx *buntdb.Tx) error {
		_, _, err := tx.Set(makeKey(c.collection, id), string(raw), nil)
		return err
	})
}

func (c *buntCollection) DeleteOne(f Filter) (bool, error) {
	docs, err := c.scanAll()
	if err != nil {
		return false, err
	}
	for _, id := range sortedKeys(docs) {
		if matches(docs[id], f) {
			if err := c.delete(id); err != nil {
				return false, err
			}
			return true, nil
		}
	}
	return false, nil
}

func (c *buntCollection) DeleteMany(f Filter) (int, error) {
	docs, err := c.scanAll()
	if err != nil {
		return 0, err
	}
	count := 0
	for _, id := range sortedKeys(docs) {
		if matches(docs[id], f) {
			if err := c.delete(id); err != nil {
				return count, err
			}
			count++
		}
	}
	return count, nil
}

func (c *buntCollection) delete(id string) error {
	return c.db.Update(func(tx *buntdb.Tx) error {
		_, err := tx.Delete(makeKey(c.collection, id))
		if err == buntdb.ErrNotFound {
			return nil
		}
		return err
	})
}

func (c *buntCollection) Count(f Filter) (int, error) {
	docs, err := c.scanAll()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, doc := range docs {
		if matches(doc, f) {
			n++
		}
	}
	return n, nil
}

func (c *buntCollection) Close() error { return nil }

func mergeDoc(base, update Document) Document {
	merged := make(Document, len(base)+len(update))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range update {
		merged[k] = v
	}
	return merged
}
