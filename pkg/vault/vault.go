// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package vault

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kraklabs/wks/internal/config"
	"github.com/kraklabs/wks/internal/errors"
	"github.com/kraklabs/wks/pkg/db"
	"github.com/kraklabs/wks/pkg/linkgraph"
	"github.com/kraklabs/wks/pkg/uri"
)

// LinksDirName is the vault-relative directory that mirrors external
// wiki-link targets via symlinks.
const LinksDirName = "_links"

// Engine is a vault-scoped wrapper over the link engine.
type Engine struct {
	links    *linkgraph.Engine
	edges    db.Collection
	basePath string
	backend  string
}

// New constructs a vault Engine over the shared edges collection.
func New(edges db.Collection, basePath, backend string) *Engine {
	return &Engine{
		links:    linkgraph.New(edges, basePath),
		edges:    edges,
		basePath: basePath,
		backend:  backend,
	}
}

// Register ensures the vault base path is a monitored include path (with
// _links excluded) and persists the registration to {WKS_HOME}/vault.json.
// Called on first run or whenever the base path changes.
func Register(cfg *config.Config, home string) error {
	state, err := LoadState(home)
	if err != nil {
		return err
	}
	if state != nil && state.BasePath == cfg.Vault.BasePath && state.Backend == cfg.Vault.Backend {
		return nil
	}

	if err := config.AddFilterRule(cfg, config.FilterIncludePaths, cfg.Vault.BasePath); err != nil && !isAlreadyRegistered(err) {
		return err
	}
	if err := config.AddFilterRule(cfg, config.FilterExcludeDirnames, LinksDirName); err != nil && !isAlreadyRegistered(err) {
		return err
	}

	return SaveState(home, &State{BasePath: cfg.Vault.BasePath, Backend: cfg.Vault.Backend})
}

// isAlreadyRegistered reports whether err is the Conflict error
// AddFilterRule returns for a rule that's already present — expected and
// harmless when re-registering an unchanged vault.
func isAlreadyRegistered(err error) bool {
	ue := errors.AsUserError(err)
	return ue != nil && ue.Kind == errors.KindConflict
}

// Sync delegates to the link engine, then (for the Obsidian backend)
// maintains the _links/<host>/<abs-path> symlink mirror so external
// targets referenced by wiki-links are navigable inside the vault tree.
func (e *Engine) Sync(sourcePath string, remote bool) (linkgraph.SyncResult, error) {
	result, err := e.links.Sync(sourcePath, "", remote)
	if err != nil {
		return result, err
	}
	if e.backend != "obsidian" {
		return result, nil
	}

	fromURI, ok := sourceVaultURI(sourcePath, e.basePath)
	if !ok {
		return result, nil
	}
	edges, err := e.edges.Find(db.Filter{"from_uri": fromURI})
	if err != nil {
		return result, err
	}
	for _, edge := range edges {
		e.maintainSymlink(fmt.Sprint(edge["to_uri"]))
	}
	return result, nil
}

// Check reports broken links with line numbers and classification.
func (e *Engine) Check(sourcePath string, remote bool) (linkgraph.CheckResult, error) {
	return e.links.Check(sourcePath, "", remote)
}

// StatusReport is the outcome of Status.
type StatusReport struct {
	VaultEdges int
	Issues     []string
}

// Status reports edges whose from_uri is vault:///… and validates that no
// edge outside the vault has a vault:/// target.
func (e *Engine) Status() (StatusReport, error) {
	all, err := e.edges.Find(db.Filter{})
	if err != nil {
		return StatusReport{}, err
	}
	var report StatusReport
	for _, doc := range all {
		from := fmt.Sprint(doc["from_uri"])
		to := fmt.Sprint(doc["to_uri"])
		if strings.HasPrefix(from, "vault:///") {
			report.VaultEdges++
			continue
		}
		if strings.HasPrefix(to, "vault:///") {
			report.Issues = append(report.Issues, fmt.Sprintf(
				"invariant violation: edge from %s targets %s outside the vault", from, to))
		}
	}
	return report, nil
}

func sourceVaultURI(sourcePath, basePath string) (string, bool) {
	abs, err := filepath.Abs(sourcePath)
	if err != nil {
		return "", false
	}
	return uri.PathToVaultURI(abs, basePath)
}

func (e *Engine) maintainSymlink(toURI string) {
	parsed, err := uri.Parse(toURI)
	if err != nil || (parsed.Scheme != uri.SchemeFile && parsed.Scheme != uri.SchemeVault) {
		return
	}
	targetPath, err := uri.ToPath(parsed, e.basePath)
	if err != nil {
		return
	}
	rel, err := filepath.Rel(e.basePath, targetPath)
	if err == nil && !strings.HasPrefix(rel, "..") {
		return // already inside the vault, no mirror needed
	}

	host := parsed.Host
	if host == "" {
		host = uri.Hostname()
	}
	mirror := filepath.Join(e.basePath, LinksDirName, host, strings.TrimPrefix(targetPath, string(filepath.Separator)))
	if err := os.MkdirAll(filepath.Dir(mirror), 0o750); err != nil {
		return
	}
	if existing, err := os.Readlink(mirror); err == nil {
		if existing == targetPath {
			return
		}
		os.Remove(mirror)
	}
	os.Symlink(targetPath, mirror)
}
