// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/kraklabs/wks/internal/config"
	wkslog "github.com/kraklabs/wks/internal/log"
	"github.com/kraklabs/wks/pkg/db"
	"github.com/kraklabs/wks/pkg/filter"
	"github.com/kraklabs/wks/pkg/monitor"
	"github.com/kraklabs/wks/pkg/uri"
	"github.com/kraklabs/wks/pkg/vault"
)

// Daemon is the long-running watcher process: it keeps the monitor,
// vault, and link state synced with the filesystem via fsnotify instead
// of relying solely on manual sync commands.
type Daemon struct {
	cfg      *config.Config
	monitor  *monitor.Engine
	nodes    db.Collection
	vault    *vault.Engine // nil when no vault is configured
	vaultDir string

	home, lockPath, statusPath string

	// restrictDir, if non-empty, overrides cfg.Monitor.Filter.IncludePaths
	// for the set of roots watched (the --restrict override).
	restrictDir string

	logger   *slog.Logger
	warnings *wkslog.RingBuffer
	errors   *wkslog.RingBuffer

	dbCmd *exec.Cmd

	now func() time.Time
}

const statusRingCapacity = 50

// New constructs a Daemon. nodes is the same collection wrapped by
// monitorEng (passed separately because the event loop needs to query
// local_uri directly when resolving move/delete descendants). vaultEng
// may be nil.
func New(cfg *config.Config, monitorEng *monitor.Engine, nodes db.Collection, vaultEng *vault.Engine, home, restrictDir string, logger *slog.Logger) *Daemon {
	return &Daemon{
		cfg:         cfg,
		monitor:     monitorEng,
		nodes:       nodes,
		vault:       vaultEng,
		vaultDir:    cfg.Vault.BasePath,
		home:        home,
		lockPath:    filepath.Join(home, "daemon.lock"),
		statusPath:  filepath.Join(home, "daemon.json"),
		restrictDir: restrictDir,
		logger:      logger,
		warnings:    wkslog.NewRingBuffer(statusRingCapacity),
		errors:      wkslog.NewRingBuffer(statusRingCapacity),
		now:         time.Now,
	}
}

// Run executes the full daemon lifecycle until ctx is cancelled (e.g. by
// a caught shutdown signal), then drains in-flight work and exits
// cleanly. Its cooperating loops (watch, tick, db-health, metrics) run
// under one errgroup so any one failure tears down the rest.
func (d *Daemon) Run(ctx context.Context) error {
	lock, err := AcquireLock(d.lockPath)
	if err != nil {
		return err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			d.logger.Warn("daemon.lock.release_failed", "err", err)
		}
	}()

	if err := d.ensureDatabase(ctx); err != nil {
		return err
	}
	defer d.stopSpawnedDatabase()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("daemon: create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	roots := d.cfg.Monitor.Filter.IncludePaths
	if d.restrictDir != "" {
		roots = []string{d.restrictDir}
	}
	filterEng := filter.New(filterConfigFrom(d.cfg.Monitor.Filter))
	watched, warnings := registerWatchers(watcher, roots, filterEng)
	for _, w := range warnings {
		d.warn(w)
	}
	d.logger.Info("daemon.watch.start", "dirs", watched, "roots", strings.Join(roots, ","))

	queue := NewEventQueue(d.cfg.Daemon.EventQueueSize)
	interval := time.Duration(d.cfg.Daemon.SyncIntervalSecs) * time.Second
	grace := time.Duration(d.cfg.Daemon.ShutdownGraceSecs) * time.Second

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error { return d.watchLoop(gctx, watcher, queue) })
	g.Go(func() error { return d.tickLoop(gctx, queue, interval) })
	g.Go(func() error { return d.dbHealthLoop(gctx) })
	if d.cfg.Daemon.MetricsAddr != "" {
		g.Go(func() error { return d.metricsLoop(gctx) })
	}

	err = g.Wait()

	// Drain any events left pending from the final tick, bounded by the
	// configured shutdown grace period.
	drainCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	d.drainOnce(drainCtx, queue)

	if err != nil && err != context.Canceled {
		return err
	}
	return nil
}

func (d *Daemon) watchLoop(ctx context.Context, watcher *fsnotify.Watcher, queue *EventQueue) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			switch {
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				queue.Push(ev.Name, EventDelete)
			default:
				queue.Push(ev.Name, EventCreateOrModify)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			d.warn(fmt.Sprintf("watcher error: %v", err))
		}
	}
}

func (d *Daemon) tickLoop(ctx context.Context, queue *EventQueue, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.drainOnce(ctx, queue)
			if err := d.writeHeartbeat(); err != nil {
				d.logger.Warn("daemon.heartbeat.write_failed", "err", err)
			}
		}
	}
}

// drainOnce processes every path currently queued, applying the
// create/modify/delete/move rules.
func (d *Daemon) drainOnce(ctx context.Context, queue *EventQueue) {
	pending := queue.Drain()
	for path, kind := range pending {
		select {
		case <-ctx.Done():
			return
		default:
		}
		d.applyEvent(path, kind)
	}
}

func (d *Daemon) applyEvent(path string, kind EventKind) {
	switch kind {
	case EventDelete:
		d.syncPathAndDescendants(path)
	default:
		recursive := isDir(path)
		if _, err := d.monitor.Sync(path, recursive); err != nil {
			d.warn(fmt.Sprintf("sync %s: %v", path, err))
			return
		}
		d.syncLinksIfApplicable(path)
	}
}

// syncPathAndDescendants handles a delete/move-away: path itself may
// have been a file or a directory that no longer exists, so descendant
// records are enumerated from the monitor store (not disk, which no
// longer has them) and synced individually.
func (d *Daemon) syncPathAndDescendants(path string) {
	if _, err := d.monitor.Sync(path, false); err != nil {
		d.warn(fmt.Sprintf("sync %s: %v", path, err))
	}

	all, err := d.nodes.Find(db.Filter{})
	if err != nil {
		d.warn(fmt.Sprintf("enumerate descendants of %s: %v", path, err))
		return
	}
	var known []string
	for _, doc := range all {
		localURI, _ := doc["local_uri"].(string)
		if localURI == "" {
			continue
		}
		p, err := uri.ToPath(mustParse(localURI), "")
		if err == nil {
			known = append(known, p)
		}
	}
	for _, sub := range descendants(known, path) {
		if _, err := d.monitor.Sync(sub, false); err != nil {
			d.warn(fmt.Sprintf("sync descendant %s: %v", sub, err))
		}
	}
}

func (d *Daemon) syncLinksIfApplicable(path string) {
	if d.vault == nil || isDir(path) {
		return
	}
	if !isMarkdownFamily(path) {
		return
	}
	rel, err := filepath.Rel(d.vaultDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	if _, err := d.vault.Sync(path, false); err != nil {
		d.warn(fmt.Sprintf("link sync %s: %v", path, err))
	}
}

func (d *Daemon) dbHealthLoop(ctx context.Context) error {
	if !d.cfg.Database.Local {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := d.nodes.Count(db.Filter{}); err != nil {
				d.errorf("database unreachable: %v", err)
				if err := d.ensureDatabase(ctx); err != nil {
					d.errorf("database respawn failed: %v", err)
				}
			}
		}
	}
}

// ensureDatabase verifies the configured local database is reachable,
// spawning it via database.spawn_cmd if it's configured as local and
// currently unreachable.
func (d *Daemon) ensureDatabase(ctx context.Context) error {
	if !d.cfg.Database.Local || d.cfg.Database.SpawnCmd == "" {
		return nil
	}
	if _, err := d.nodes.Count(db.Filter{}); err == nil {
		return nil // already reachable
	}
	if d.dbCmd != nil && d.dbCmd.Process != nil {
		return nil // a spawn is already in flight
	}

	parts := strings.Fields(d.cfg.Database.SpawnCmd)
	if len(parts) == 0 {
		return nil
	}
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("daemon: spawn database subprocess: %w", err)
	}
	d.dbCmd = cmd
	d.logger.Info("daemon.database.spawned", "cmd", d.cfg.Database.SpawnCmd, "pid", cmd.Process.Pid)
	return nil
}

func (d *Daemon) stopSpawnedDatabase() {
	if d.dbCmd == nil || d.dbCmd.Process == nil {
		return
	}
	if err := d.dbCmd.Process.Kill(); err != nil {
		d.logger.Warn("daemon.database.stop_failed", "err", err)
	}
	d.dbCmd.Wait()
}

func (d *Daemon) metricsLoop(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: d.cfg.Daemon.MetricsAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		d.logger.Info("daemon.metrics.start", "addr", d.cfg.Daemon.MetricsAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("daemon: metrics server: %w", err)
		}
		return nil
	}
}

func (d *Daemon) writeHeartbeat() error {
	lastSync, _ := d.monitor.LastSync()
	status := Status{
		PID:         pidOf(),
		Running:     true,
		RestrictDir: d.restrictDir,
		LogPath:     d.cfg.Log.Path,
		LastSync:    lastSync,
		Warnings:    entriesFrom(d.warnings.Entries()),
		Errors:      entriesFrom(d.errors.Entries()),
	}
	return WriteStatus(d.statusPath, status)
}

func (d *Daemon) warn(msg string) {
	d.warnings.Push(msg, d.now())
	d.logger.Warn("daemon.warning", "msg", msg)
}

func (d *Daemon) errorf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	d.errors.Push(msg, d.now())
	d.logger.Error("daemon.error", "msg", msg)
}

func isMarkdownFamily(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

func mustParse(s string) uri.ParsedURI {
	p, err := uri.Parse(s)
	if err != nil {
		return uri.ParsedURI{}
	}
	return p
}
