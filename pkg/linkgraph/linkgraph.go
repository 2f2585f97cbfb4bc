// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package linkgraph

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/kraklabs/wks/pkg/db"
	"github.com/kraklabs/wks/pkg/uri"
)

// Status classifies an edge's health.
type Status string

const (
	StatusOK             Status = "ok"
	StatusMissingTarget  Status = "missing_target"
	StatusMissingSymlink Status = "missing_symlink"
	StatusLegacy         Status = "legacy"
)

// Edge mirrors one row of the edges collection.
type Edge struct {
	ID           string
	FromURI      string
	ToURI        string
	LineNumber   int
	ColumnNumber int
	Name         string
	Parser       string
	Status       Status
}

// Engine parses files and maintains the edges collection.
type Engine struct {
	edges     db.Collection
	vaultBase string
	probeHTTP func(url string) bool
	now       func() time.Time
}

// New constructs an Engine. vaultBase resolves vault:/// targets; it may be
// empty if the vault is not configured (vault:// targets then fail to
// resolve and are reported, never silently dropped).
func New(edges db.Collection, vaultBase string) *Engine {
	return &Engine{
		edges:     edges,
		vaultBase: vaultBase,
		probeHTTP: defaultProbe,
		now:       time.Now,
	}
}

func defaultProbe(url string) bool {
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Head(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 400
}

// edgeID computes the deterministic ID for an edge:
// sha256(from_uri|line|column|to_uri).
func edgeID(fromURI string, line, column int, toURI string) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|%d|%s", fromURI, line, column, toURI)
	return hex.EncodeToString(h.Sum(nil))
}

// CheckResult is the outcome of Check.
type CheckResult struct {
	Edges []Edge
}

// Check parses sourcePath, resolves its links, and classifies their
// status without writing anything.
func (e *Engine) Check(sourcePath, explicitParser string, remote bool) (CheckResult, error) {
	fromURI, parserName, links, err := e.parseSource(sourcePath, explicitParser)
	if err != nil {
		return CheckResult{}, err
	}
	var out CheckResult
	for _, l := range links {
		toURI, status := e.resolve(fromURI, l.Target, remote)
		out.Edges = append(out.Edges, Edge{
			ID:           edgeID(fromURI, l.Line, l.Column, toURI),
			FromURI:      fromURI,
			ToURI:        toURI,
			LineNumber:   l.Line,
			ColumnNumber: l.Column,
			Name:         l.Name,
			Parser:       parserName,
			Status:       status,
		})
	}
	return out, nil
}

// SyncResult is the outcome of Sync.
type SyncResult struct {
	EdgesWritten int
}

// Sync parses sourcePath and replaces its edge set atomically: delete all
// edges with matching from_uri, then insert the new set.
func (e *Engine) Sync(sourcePath, explicitParser string, remote bool) (SyncResult, error) {
	fromURI, parserName, links, err := e.parseSource(sourcePath, explicitParser)
	if err != nil {
		return SyncResult{}, err
	}

	if _, err := e.edges.DeleteMany(db.Filter{"from_uri": fromURI}); err != nil {
		return SyncResult{}, err
	}

	now := e.now().UTC().Format(time.RFC3339)
	for _, l := range links {
		toURI, status := e.resolve(fromURI, l.Target, remote)
		id := edgeID(fromURI, l.Line, l.Column, toURI)
		doc := db.Document{
			"_id":           id,
			"from_uri":      fromURI,
			"to_uri":        toURI,
			"line_number":   l.Line,
			"column_number": l.Column,
			"name":          l.Name,
			"parser":        parserName,
			"status":        string(status),
			"first_seen":    now,
			"last_seen":     now,
			"last_updated":  now,
		}
		if err := e.edges.UpdateOne(db.Filter{"_id": id}, doc, true); err != nil {
			return SyncResult{}, err
		}
	}
	return SyncResult{EdgesWritten: len(links)}, nil
}

// Show lists edges touching uri, per direction ("from", "to", or "either").
func (e *Engine) Show(u, direction string) ([]db.Document, error) {
	switch direction {
	case "from":
		return e.edges.Find(db.Filter{"from_uri": u})
	case "to":
		return e.edges.Find(db.Filter{"to_uri": u})
	default:
		from, err := e.edges.Find(db.Filter{"from_uri": u})
		if err != nil {
			return nil, err
		}
		to, err := e.edges.Find(db.Filter{"to_uri": u})
		if err != nil {
			return nil, err
		}
		return append(from, to...), nil
	}
}

// PruneResult is the outcome of Prune.
type PruneResult struct {
	Removed int
}

// Prune deletes edges whose source file is gone, whose local target is
// gone, and (if remote) whose external target fails a probe.
func (e *Engine) Prune(remote bool) (PruneResult, error) {
	all, err := e.edges.Find(db.Filter{})
	if err != nil {
		return PruneResult{}, err
	}
	var result PruneResult
	for _, doc := range all {
		fromURI := fmt.Sprint(doc["from_uri"])
		toURI := fmt.Sprint(doc["to_uri"])

		if !e.uriExists(fromURI, remote) {
			if _, err := e.edges.DeleteOne(db.Filter{"_id": doc["_id"]}); err == nil {
				result.Removed++
			}
			continue
		}
		parsed, err := uri.Parse(toURI)
		if err != nil {
			continue // unresolved/legacy target, leave for `check` to report
		}
		if parsed.Scheme == uri.SchemeHTTP || parsed.Scheme == uri.SchemeHTTPS {
			if remote && !e.probeHTTP(toURI) {
				if _, err := e.edges.DeleteOne(db.Filter{"_id": doc["_id"]}); err == nil {
					result.Removed++
				}
			}
			continue
		}
		if !e.uriExists(toURI, remote) {
			if _, err := e.edges.DeleteOne(db.Filter{"_id": doc["_id"]}); err == nil {
				result.Removed++
			}
		}
	}
	return result, nil
}

func (e *Engine) uriExists(u string, remote bool) bool {
	parsed, err := uri.Parse(u)
	if err != nil {
		return false
	}
	if parsed.Scheme == uri.SchemeHTTP || parsed.Scheme == uri.SchemeHTTPS {
		if !remote {
			return true
		}
		return e.probeHTTP(u)
	}
	p, err := uri.ToPath(parsed, e.vaultBase)
	if err != nil {
		return false
	}
	_, statErr := os.Stat(p)
	return statErr == nil
}

func (e *Engine) parseSource(sourcePath, explicitParser string) (fromURI, parserName string, links []Link, err error) {
	content, err := os.ReadFile(sourcePath)
	if err != nil {
		return "", "", nil, err
	}
	parser := SelectParser(sourcePath, explicitParser)
	links, err = parser.Parse(content)
	if err != nil {
		return "", "", nil, err
	}
	fromURI = sourceURI(sourcePath, e.vaultBase)
	return fromURI, parser.Name(), links, nil
}

// sourceURI prefers a vault:/// URI when sourcePath falls inside vaultBase:
// filesystem paths inside the vault are rewritten to vault:/// URIs
// before being stored.
func sourceURI(sourcePath, vaultBase string) string {
	if vaultBase != "" {
		if v, ok := uri.PathToVaultURI(absPath(sourcePath), vaultBase); ok {
			return v
		}
	}
	return uri.FromPath(absPath(sourcePath))
}

func absPath(p string) string {
	if path.IsAbs(p) {
		return p
	}
	wd, err := os.Getwd()
	if err != nil {
		return p
	}
	return path.Join(wd, p)
}

// resolve turns a raw parsed target into a URI and a health classification.
func (e *Engine) resolve(fromURI, rawTarget string, remote bool) (string, Status) {
	if looksLikeURI(rawTarget) {
		parsed, err := uri.Parse(rawTarget)
		if err != nil {
			return rawTarget, StatusLegacy
		}
		return e.classify(parsed, remote)
	}

	// An absolute filesystem path is unambiguous regardless of the source's
	// own scheme: it names a real location, not something vault-relative.
	if path.IsAbs(rawTarget) {
		return e.classify(mustParse(uri.FromPath(ensureExt(rawTarget))), remote)
	}

	// Bare relative reference: resolve relative to the source's own scheme.
	fromParsed, err := uri.Parse(fromURI)
	if err != nil {
		return rawTarget, StatusLegacy
	}
	rel := rawTarget
	if fromParsed.Scheme == uri.SchemeVault {
		joined := path.Join(path.Dir(fromParsed.Path), rel)
		return e.classify(mustParse(uri.FromVaultPath(ensureExt(joined))), remote)
	}
	joined := path.Join(path.Dir(fromParsed.Path), rel)
	return e.classify(mustParse(uri.FromPath(ensureExt(joined))), remote)
}

// ensureExt appends ".md" to an Obsidian-style bare note reference
// ("[[B]]" -> "B.md"), the convention the vault backend uses for wiki links.
func ensureExt(p string) string {
	if path.Ext(p) != "" {
		return p
	}
	return p + ".md"
}

func mustParse(raw string) uri.ParsedURI {
	p, _ := uri.Parse(raw)
	return p
}

func looksLikeURI(s string) bool {
	return strings.Contains(s, "://")
}

func (e *Engine) classify(parsed uri.ParsedURI, remote bool) (string, Status) {
	s := parsed.String()
	switch parsed.Scheme {
	case uri.SchemeHTTP, uri.SchemeHTTPS:
		if remote && !e.probeHTTP(s) {
			return s, StatusMissingTarget
		}
		return s, StatusOK
	case uri.SchemeVault, uri.SchemeFile:
		if strings.Contains(parsed.Path, "/_links/") {
			target, err := uri.ToPath(parsed, e.vaultBase)
			if err != nil {
				return s, StatusMissingSymlink
			}
			if _, statErr := os.Lstat(target); statErr != nil {
				return s, StatusMissingSymlink
			}
			return s, StatusOK
		}
		target, err := uri.ToPath(parsed, e.vaultBase)
		if err != nil {
			return s, StatusMissingTarget
		}
		if _, statErr := os.Stat(target); statErr != nil {
			return s, StatusMissingTarget
		}
		return s, StatusOK
	default:
		return s, StatusLegacy
	}
}
