// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/kraklabs/wks/internal/errors"
	"github.com/kraklabs/wks/pkg/db"
	"github.com/kraklabs/wks/pkg/uri"
)

var checksumRE = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Cache is the transform cache controller: a content-hash keyed cache of
// derived artifacts, atomically coherent between the on-disk files under
// baseDir and the rows in the transform collection. nodes and edges are
// optional (nil skips graph integration, which is best-effort).
type Cache struct {
	rows         db.Collection
	nodes        db.Collection
	edges        db.Collection
	registry     *Registry
	baseDir      string
	maxSizeBytes int64
	now          func() time.Time
}

// New constructs a Cache rooted at baseDir, evicting down to
// maxSizeBytes whenever a transform pushes the cache over it.
func New(rows db.Collection, registry *Registry, baseDir string, maxSizeBytes int64) *Cache {
	return &Cache{
		rows:         rows,
		registry:     registry,
		baseDir:      baseDir,
		maxSizeBytes: maxSizeBytes,
		now:          time.Now,
	}
}

// WithGraph enables best-effort node/edge bookkeeping on successful
// transforms.
func (c *Cache) WithGraph(nodes, edges db.Collection) *Cache {
	c.nodes = nodes
	c.edges = edges
	return c
}

func (c *Cache) cachePath(checksum, ext string) string {
	name := checksum
	if ext != "" {
		name += "." + ext
	}
	return filepath.Join(c.baseDir, name)
}

// Transform looks up (fileChecksum, engineName, optionsHash); on a hit it
// touches last_accessed and returns the cached checksum. On a miss it
// invokes the engine, atomically installs the artifact, inserts the row,
// evicts if over the size cap, and best-effort refreshes the link graph.
func (c *Cache) Transform(engineName, filePath string, options map[string]any) (checksum string, warning string, err error) {
	engine, ok := c.registry.Lookup(engineName)
	if !ok {
		return "", "", errors.NewUnsupportedError(
			"unknown transform engine",
			fmt.Sprintf("no engine registered under %q", engineName),
			"check `wks transform engines` for the configured names", nil)
	}

	absFile, err := filepath.Abs(filePath)
	if err != nil {
		return "", "", err
	}
	fileChecksum, _, err := checksumFile(absFile)
	if err != nil {
		return "", "", errors.NewInternalError("cannot read source file",
			err.Error(), "verify the file exists and is readable", err)
	}
	optHash, err := optionsHash(options)
	if err != nil {
		return "", "", err
	}
	fileURI := uri.FromPath(absFile)

	key := db.Filter{"file_checksum": fileChecksum, "engine": engineName, "options_hash": optHash}
	if row, found, err := c.rows.FindOne(key); err != nil {
		return "", "", err
	} else if found {
		checksum = fmt.Sprint(row["checksum"])
		if err := c.rows.UpdateOne(key, db.Document{"last_accessed": c.now().UTC().Format(time.RFC3339)}, false); err != nil {
			return "", "", err
		}
		c.refreshGraph(fileURI, fmt.Sprint(row["cache_uri"]), engineName)
		return checksum, "", nil
	}

	tmpPath, ext, err := engine.Transform(absFile, options)
	if err != nil {
		return "", "", errors.NewEngineError("transform engine failed",
			err.Error(), "check the engine's options and the source file", err)
	}

	artifactChecksum, size, err := checksumFile(tmpPath)
	if err != nil {
		os.Remove(tmpPath)
		return "", "", err
	}

	dest := c.cachePath(artifactChecksum, ext)
	if err := os.MkdirAll(c.baseDir, 0o750); err != nil {
		os.Remove(tmpPath)
		return "", "", err
	}
	if _, statErr := os.Stat(dest); statErr != nil {
		if err := installArtifact(tmpPath, dest); err != nil {
			os.Remove(tmpPath)
			return "", "", errors.NewInternalError("cannot install cached artifact",
				err.Error(), "check permissions on the transform cache directory", err)
		}
	} else {
		os.Remove(tmpPath)
	}

	now := c.now().UTC().Format(time.RFC3339)
	cacheURIStr := uri.FromPath(dest)
	row := db.Document{
		"file_uri":      fileURI,
		"file_checksum": fileChecksum,
		"engine":        engineName,
		"options_hash":  optHash,
		"checksum":      artifactChecksum,
		"cache_uri":     cacheURIStr,
		"size_bytes":    size,
		"created_at":    now,
		"last_accessed": now,
	}
	if err := c.rows.UpdateOne(key, row, true); err != nil {
		os.Remove(dest)
		return "", "", err
	}

	if warn := c.evictIfNeeded(); warn != "" {
		warning = warn
	}
	c.refreshGraph(fileURI, cacheURIStr, engineName)
	return artifactChecksum, warning, nil
}

// Cat resolves target (a 64-hex checksum, or a file path to transform
// with the default engine for its extension) and returns an open handle
// to the artifact plus its size.
func (c *Cache) Cat(target string) (io.ReadCloser, int64, error) {
	if checksumRE.MatchString(target) {
		row, found, err := c.rows.FindOne(db.Filter{"checksum": target})
		if err != nil {
			return nil, 0, err
		}
		if !found {
			return nil, 0, errors.NewNotFoundError("no cached artifact",
				fmt.Sprintf("checksum %s has no transform row", target),
				"run transform on the source file first", nil)
		}
		path, err := uri.ToPath(mustParseURI(fmt.Sprint(row["cache_uri"])), "")
		if err != nil {
			return nil, 0, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, 0, err
		}
		info, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, 0, err
		}
		c.rows.UpdateOne(db.Filter{"checksum": target}, db.Document{
			"last_accessed": c.now().UTC().Format(time.RFC3339),
		}, false)
		return f, info.Size(), nil
	}

	ext := extOf(target)
	engine, ok := c.registry.Default(ext)
	if !ok {
		return nil, 0, errors.NewUnsupportedError("no default engine",
			fmt.Sprintf("no engine is registered as default for %q files", ext),
			"pass an explicit engine name to transform", nil)
	}
	checksum, _, err := c.Transform(engine.Name(), target, nil)
	if err != nil {
		return nil, 0, err
	}
	return c.Cat(checksum)
}

// Reset deletes every row and every artifact file, reporting any orphans
// it encounters along the way (files with no row, or vice versa).
func (c *Cache) Reset() (orphans []string, err error) {
	rows, err := c.rows.Find(db.Filter{})
	if err != nil {
		return nil, err
	}
	known := map[string]bool{}
	for _, row := range rows {
		known[fmt.Sprint(row["checksum"])] = true
	}
	if _, err := c.rows.DeleteMany(db.Filter{}); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(c.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base := entry.Name()
		sum := base[:len(base)-len(filepath.Ext(base))]
		if !known[sum] {
			orphans = append(orphans, entry.Name())
		}
		os.Remove(filepath.Join(c.baseDir, entry.Name()))
	}
	return orphans, nil
}

// Audit walks the collection and the directory, deleting either side of
// any mismatch: a row whose artifact file is missing, or a file with no
// corresponding row.
func (c *Cache) Audit() (rowsDeleted, filesDeleted int, err error) {
	rows, err := c.rows.Find(db.Filter{})
	if err != nil {
		return 0, 0, err
	}
	known := map[string]bool{}
	for _, row := range rows {
		checksum := fmt.Sprint(row["checksum"])
		path, perr := uri.ToPath(mustParseURI(fmt.Sprint(row["cache_uri"])), "")
		if perr != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			if _, err := c.rows.DeleteOne(db.Filter{"checksum": checksum}); err != nil {
				return rowsDeleted, filesDeleted, err
			}
			rowsDeleted++
			continue
		}
		known[checksum] = true
	}

	entries, err := os.ReadDir(c.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return rowsDeleted, filesDeleted, nil
		}
		return rowsDeleted, filesDeleted, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base := entry.Name()
		sum := base[:len(base)-len(filepath.Ext(base))]
		if !known[sum] {
			os.Remove(filepath.Join(c.baseDir, entry.Name()))
			filesDeleted++
		}
	}
	return rowsDeleted, filesDeleted, nil
}

// evictIfNeeded removes least-recently-accessed rows (and their
// artifacts) until total cache size is under maxSizeBytes.
func (c *Cache) evictIfNeeded() string {
	if c.maxSizeBytes <= 0 {
		return ""
	}
	rows, err := c.rows.Find(db.Filter{})
	if err != nil {
		return fmt.Sprintf("eviction scan failed: %v", err)
	}
	var total int64
	for _, row := range rows {
		total += asInt64(row["size_bytes"])
	}
	if total <= c.maxSizeBytes {
		return ""
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return fmt.Sprint(rows[i]["last_accessed"]) < fmt.Sprint(rows[j]["last_accessed"])
	})
	for _, row := range rows {
		if total <= c.maxSizeBytes {
			break
		}
		checksum := fmt.Sprint(row["checksum"])
		path, perr := uri.ToPath(mustParseURI(fmt.Sprint(row["cache_uri"])), "")
		if perr == nil {
			os.Remove(path)
		}
		if _, err := c.rows.DeleteOne(db.Filter{"checksum": checksum}); err != nil {
			return fmt.Sprintf("eviction delete failed: %v", err)
		}
		total -= asInt64(row["size_bytes"])
	}
	return ""
}

// asInt64 normalizes a document field that may be int64 (mock backend,
// same process that wrote it) or float64 (buntdb backend, round-tripped
// through JSON) into an int64.
func asInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case float64:
		return int64(n)
	case int:
		return int64(n)
	default:
		return 0
	}
}

// refreshGraph is the transform cache's best-effort link-graph hook: it
// upserts minimal nodes for the source file and the cached artifact, and
// an edge between them. Failure here is swallowed — the spec treats this
// as a warning, never an error, and the cache is already consistent
// without it.
func (c *Cache) refreshGraph(fileURI, cacheURI, engineName string) {
	if c.nodes == nil || c.edges == nil {
		return
	}
	now := c.now().UTC().Format(time.RFC3339)
	c.nodes.UpdateOne(db.Filter{"local_uri": fileURI}, db.Document{"local_uri": fileURI, "timestamp": now}, true)
	c.nodes.UpdateOne(db.Filter{"local_uri": cacheURI}, db.Document{"local_uri": cacheURI, "timestamp": now}, true)

	id := edgeID(fileURI, cacheURI)
	c.edges.UpdateOne(db.Filter{"_id": id}, db.Document{
		"_id": id, "from_uri": fileURI, "to_uri": cacheURI,
		"line_number": 1, "column_number": 1,
		"name": engineName, "parser": "transform", "status": "ok",
		"last_updated": now,
	}, true)
}

func edgeID(fromURI, toURI string) string {
	h := sha256.Sum256([]byte(fromURI + "|0|0|" + toURI))
	return hex.EncodeToString(h[:])
}

func installArtifact(tmpPath, dest string) error {
	if err := os.Rename(tmpPath, dest); err == nil {
		return nil
	}
	// Cross-device rename: fall back to copy+remove.
	src, err := os.Open(tmpPath)
	if err != nil {
		return err
	}
	defer src.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := copyBuffered(out, src); err != nil {
		os.Remove(dest)
		return err
	}
	os.Remove(tmpPath)
	return nil
}

func extOf(path string) string {
	ext := filepath.Ext(path)
	if len(ext) > 0 {
		ext = ext[1:]
	}
	return ext
}

func mustParseURI(s string) uri.ParsedURI {
	p, err := uri.Parse(s)
	if err != nil {
		return uri.ParsedURI{}
	}
	return p
}
