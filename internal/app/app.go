// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app wires a loaded configuration into the runtime objects every
// command handler (CLI or MCP) operates on: the database connection, the
// monitor/vault/link engines, the transform cache, and the diff registry.
package app

import (
	"log/slog"
	"time"

	"github.com/kraklabs/wks/internal/config"
	wkslog "github.com/kraklabs/wks/internal/log"
	"github.com/kraklabs/wks/pkg/db"
	"github.com/kraklabs/wks/pkg/diff"
	"github.com/kraklabs/wks/pkg/linkgraph"
	"github.com/kraklabs/wks/pkg/monitor"
	"github.com/kraklabs/wks/pkg/transform"
	"github.com/kraklabs/wks/pkg/vault"
)

// App bundles every engine a command handler needs, all sharing one
// database connection.
type App struct {
	Config *config.Config
	Home   string

	db *db.DB

	Nodes     db.Collection
	Edges     db.Collection
	Transform db.Collection

	Monitor       *monitor.Engine
	Vault         *vault.Engine
	Link          *linkgraph.Engine
	TransformCache *transform.Cache
	Diff          *diff.Registry

	Logger *slog.Logger
}

// New opens the configured database backend and constructs every engine.
// Connection failure is always fatal: it is returned here, never silently
// degraded to a different backend.
func New(cfg *config.Config, home string, logger *slog.Logger) (*App, error) {
	driver, err := openDriver(cfg.Database)
	if err != nil {
		return nil, err
	}
	database := db.New(driver, cfg.Database.Prefix)

	nodes, err := database.Open("nodes")
	if err != nil {
		return nil, err
	}
	edges, err := database.Open("edges")
	if err != nil {
		return nil, err
	}
	transformRows, err := database.Open("transform")
	if err != nil {
		return nil, err
	}

	monitorEng := monitor.New(nodes, cfg.Monitor)
	vaultEng := vault.New(edges, cfg.Vault.BasePath, cfg.Vault.Backend)
	linkEng := linkgraph.New(edges, cfg.Vault.BasePath)

	registry := transform.NewRegistry(transform.EnginesFromConfig(cfg.Transform.Engines))
	cache := transform.New(transformRows, registry, cfg.Transform.CacheDir, cfg.Transform.MaxSizeBytes)
	cache = cache.WithGraph(nodes, edges)

	diffRegistry := diff.NewRegistry(diff.EnginesFromConfig(cfg.Diff.Engines))

	if logger == nil {
		handler, herr := wkslog.NewHandler(cfg.Log.Path, "wks")
		if herr != nil {
			return nil, herr
		}
		logger = slog.New(handler)
	}

	return &App{
		Config:         cfg,
		Home:           home,
		db:             database,
		Nodes:          nodes,
		Edges:          edges,
		Transform:      transformRows,
		Monitor:        monitorEng,
		Vault:          vaultEng,
		Link:           linkEng,
		TransformCache: cache,
		Diff:           diffRegistry,
		Logger:         logger,
	}, nil
}

// Close releases the underlying database connection.
func (a *App) Close() error { return a.db.Close() }

// Now is a replaceable wall-clock function; defaults to time.Now. The
// handlers in internal/ops call time.Now directly and do not read it.
var Now = time.Now

func openDriver(cfg config.DatabaseConfig) (db.Driver, error) {
	switch cfg.Backend {
	case "mock":
		return db.NewMockDriver(), nil
	default:
		return db.OpenBuntDriver(cfg.Path)
	}
}
