// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads, validates, and persists the single WKS
// configuration document at {WKS_HOME}/config.json. Every field is
// required; there are no implicit defaults and unknown top-level keys are
// rejected.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/kraklabs/wks/internal/errors"
	"gopkg.in/yaml.v3"
)

const configFileName = "config.json"

// Config is the root configuration document. Field tags use "json" since
// the file is authored as JSON on disk. The top-level sections also carry
// yaml tags; the nested section structs carry json tags only, so under
// --display yaml their fields appear under yaml.v3's default lowercased
// Go field names.
type Config struct {
	Monitor   MonitorConfig   `json:"monitor" yaml:"monitor"`
	Vault     VaultConfig     `json:"vault" yaml:"vault"`
	Database  DatabaseConfig  `json:"database" yaml:"database"`
	Service   ServiceConfig   `json:"service" yaml:"service"`
	Daemon    DaemonConfig    `json:"daemon" yaml:"daemon"`
	Log       LogConfig       `json:"log" yaml:"log"`
	Transform TransformConfig `json:"transform" yaml:"transform"`
	Diff      DiffConfig      `json:"diff" yaml:"diff"`
	Index     IndexConfig     `json:"index" yaml:"index"`
	Search    SearchConfig    `json:"search" yaml:"search"`
	Display   DisplayConfig   `json:"display" yaml:"display"`
}

// PriorityConfig mirrors pkg/priority.Config; duplicated here (instead of
// imported) to keep internal/config free of a dependency on pkg/priority,
// and converted at the call site.
type PriorityConfig struct {
	Dirs                     map[string]float64 `json:"dirs"`
	DepthMultiplier          float64            `json:"depth_multiplier"`
	UnderscoreMultiplier     float64            `json:"underscore_multiplier"`
	OnlyUnderscoreMultiplier float64            `json:"only_underscore_multiplier"`
	ExtensionWeights         map[string]float64 `json:"extension_weights"`
}

// FilterConfig mirrors pkg/filter.Config.
type FilterConfig struct {
	IncludePaths    []string `json:"include_paths"`
	ExcludePaths    []string `json:"exclude_paths"`
	IncludeDirnames []string `json:"include_dirnames"`
	ExcludeDirnames []string `json:"exclude_dirnames"`
	IncludeGlobs    []string `json:"include_globs"`
	ExcludeGlobs    []string `json:"exclude_globs"`
}

type MonitorConfig struct {
	Priority     PriorityConfig `json:"priority"`
	Filter       FilterConfig   `json:"filter"`
	MaxDocuments int            `json:"max_documents"`
	MinPriority  float64        `json:"min_priority"`
}

type VaultConfig struct {
	BasePath string `json:"base_path"`
	Backend  string `json:"backend"` // "obsidian" | "plain"
}

type DatabaseConfig struct {
	Backend  string `json:"backend"` // "buntdb" | "mock"
	Prefix   string `json:"prefix"`
	Path     string `json:"path"`
	Local    bool   `json:"local"`
	SpawnCmd string `json:"spawn_cmd,omitempty"`
}

type ServiceConfig struct {
	Label   string `json:"label"`
	LogPath string `json:"log_path"`
}

type DaemonConfig struct {
	SyncIntervalSecs  int `json:"sync_interval_secs"`
	EventQueueSize    int `json:"event_queue_size"`
	ShutdownGraceSecs int `json:"shutdown_grace_secs"`
	MetricsAddr       string `json:"metrics_addr,omitempty"`
}

type LogConfig struct {
	Path                string `json:"path"`
	DebugRetentionDays   int   `json:"debug_retention_days"`
	InfoRetentionDays    int   `json:"info_retention_days"`
	WarningRetentionDays int   `json:"warning_retention_days"`
	ErrorRetentionDays   int   `json:"error_retention_days"`
}

type TransformEngineConfig struct {
	Name string `json:"name"`
	Ext  string `json:"ext"`
}

type TransformConfig struct {
	CacheDir    string                  `json:"cache_dir"`
	MaxSizeBytes int64                  `json:"max_size_bytes"`
	Engines     []TransformEngineConfig `json:"engines"`
}

type DiffConfig struct {
	Engines []string `json:"engines"`
}

// IndexConfig and SearchConfig are reserved for a planned semantic
// search / index layer; kept as empty, required sections so the document
// round-trips without loss.
type IndexConfig struct{}
type SearchConfig struct{}

type DisplayConfig struct {
	Format string `json:"format"` // "yaml" | "json"
}

// requiredTopLevelKeys is the full set of top-level JSON keys the loader
// accepts; anything else is a validation error naming the offending key.
var requiredTopLevelKeys = []string{
	"monitor", "vault", "database", "service", "daemon", "log", "transform",
	"diff", "index", "search", "display",
}

// Home resolves WKS_HOME: the WKS_HOME environment variable, or ~/.wks.
func Home() (string, error) {
	if h := os.Getenv("WKS_HOME"); h != "" {
		return filepath.Clean(h), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.NewInternalError(
			"Cannot determine home directory",
			"Operating system did not provide the user home directory path",
			"Set WKS_HOME explicitly or fix your system's home directory configuration",
			err,
		)
	}
	return filepath.Join(home, ".wks"), nil
}

// Path returns {WKS_HOME}/config.json.
func Path() (string, error) {
	home, err := Home()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, configFileName), nil
}

// Load reads and validates the configuration document. Every field is
// required: a missing top-level section, an unknown top-level key, or a
// missing nested field is a ConfigInvalid error naming the exact JSON path,
// the value found (or "<empty>"), and the expected shape.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads and validates a configuration document at an explicit path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is WKS_HOME-derived or explicitly supplied
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewConfigError(
				"Configuration not found",
				fmt.Sprintf("No configuration file at %s", path),
				"Run 'wks config init' to create a new configuration",
				err,
			)
		}
		return nil, errors.NewConfigError(
			"Cannot read configuration file",
			fmt.Sprintf("Failed to read %s", path),
			"Check file permissions and ensure the file exists",
			err,
		)
	}

	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewConfigError(
			"Invalid configuration format",
			fmt.Sprintf("%s is not valid JSON/YAML: %v", path, err),
			fmt.Sprintf("Edit %s to fix the syntax error, or run 'wks config init --force'", path),
			err,
		)
	}

	if err := validateTopLevel(raw, path); err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, errors.NewConfigError(
			"Invalid configuration format",
			fmt.Sprintf("Failed to decode %s into the expected schema: %v", path, err),
			fmt.Sprintf("Run 'wks config init --force' to regenerate %s", path),
			err,
		)
	}

	if err := validateRequiredFields(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateTopLevel rejects unknown top-level keys and reports any missing
// required section by its exact key name.
func validateTopLevel(raw map[string]any, path string) error {
	known := map[string]bool{}
	for _, k := range requiredTopLevelKeys {
		known[k] = true
	}
	unknown := []string{}
	for k := range raw {
		if !known[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errors.NewConfigError(
			"Unknown configuration key",
			fmt.Sprintf("%s contains unknown top-level key(s): %v", path, unknown),
			fmt.Sprintf("Remove the unrecognized key(s) from %s; valid sections are %v", path, requiredTopLevelKeys),
			nil,
		)
	}
	missing := []string{}
	for _, k := range requiredTopLevelKeys {
		if _, ok := raw[k]; !ok {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		return errors.NewConfigError(
			"Missing configuration section",
			fmt.Sprintf("%s is missing required top-level section(s): %v", path, missing),
			"Run 'wks config init' to generate a complete configuration document",
			nil,
		)
	}
	return nil
}

// fieldError reports a single missing/invalid field by its dotted JSON path.
func fieldError(jsonPath string, found any, expected string) error {
	return errors.NewConfigError(
		"Missing or invalid configuration value",
		fmt.Sprintf("%s: found %v, expected %s", jsonPath, found, expected),
		fmt.Sprintf("Set %s to a value matching %s", jsonPath, expected),
		nil,
	)
}

// validateRequiredFields walks the decoded struct enforcing that every
// required field is actually populated. Zero-value detection is
// deliberately explicit per field rather than reflective.
func validateRequiredFields(c *Config) error {
	if len(c.Monitor.Priority.Dirs) == 0 {
		return fieldError("monitor.priority.dirs", "<empty>", "a non-empty map of directory to base priority")
	}
	if c.Monitor.Priority.DepthMultiplier <= 0 {
		return fieldError("monitor.priority.depth_multiplier", c.Monitor.Priority.DepthMultiplier, "a positive float")
	}
	if c.Monitor.Priority.UnderscoreMultiplier <= 0 {
		return fieldError("monitor.priority.underscore_multiplier", c.Monitor.Priority.UnderscoreMultiplier, "a positive float")
	}
	if c.Monitor.Priority.OnlyUnderscoreMultiplier <= 0 {
		return fieldError("monitor.priority.only_underscore_multiplier", c.Monitor.Priority.OnlyUnderscoreMultiplier, "a positive float")
	}
	if c.Monitor.MaxDocuments <= 0 {
		return fieldError("monitor.max_documents", c.Monitor.MaxDocuments, "a positive integer")
	}
	if c.Monitor.MinPriority < 0 {
		return fieldError("monitor.min_priority", c.Monitor.MinPriority, "a non-negative float")
	}
	if err := validateFilterLists(c.Monitor.Filter); err != nil {
		return err
	}
	if c.Vault.BasePath == "" {
		return fieldError("vault.base_path", "<empty>", "an absolute directory path")
	}
	if c.Vault.Backend == "" {
		return fieldError("vault.backend", "<empty>", "one of \"obsidian\", \"plain\"")
	}
	if c.Database.Backend == "" {
		return fieldError("database.backend", "<empty>", "one of \"buntdb\", \"mock\"")
	}
	if c.Database.Prefix == "" {
		return fieldError("database.prefix", "<empty>", "a non-empty collection name prefix")
	}
	if c.Database.Path == "" && c.Database.Backend != "mock" {
		return fieldError("database.path", "<empty>", "a file path for the embedded database")
	}
	if c.Daemon.SyncIntervalSecs <= 0 {
		return fieldError("daemon.sync_interval_secs", c.Daemon.SyncIntervalSecs, "a positive integer")
	}
	if c.Daemon.EventQueueSize <= 0 {
		return fieldError("daemon.event_queue_size", c.Daemon.EventQueueSize, "a positive integer")
	}
	if c.Daemon.ShutdownGraceSecs <= 0 {
		return fieldError("daemon.shutdown_grace_secs", c.Daemon.ShutdownGraceSecs, "a positive integer")
	}
	if c.Log.Path == "" {
		return fieldError("log.path", "<empty>", "a file path")
	}
	if c.Log.DebugRetentionDays <= 0 || c.Log.InfoRetentionDays <= 0 ||
		c.Log.WarningRetentionDays <= 0 || c.Log.ErrorRetentionDays <= 0 {
		return fieldError("log.{debug,info,warning,error}_retention_days", "<non-positive>", "positive integers")
	}
	if c.Transform.CacheDir == "" {
		return fieldError("transform.cache_dir", "<empty>", "a directory path")
	}
	if c.Transform.MaxSizeBytes <= 0 {
		return fieldError("transform.max_size_bytes", c.Transform.MaxSizeBytes, "a positive integer (bytes)")
	}
	if c.Display.Format != "yaml" && c.Display.Format != "json" {
		return fieldError("display.format", c.Display.Format, "one of \"yaml\", \"json\"")
	}
	return nil
}

// validateFilterLists rejects duplicates within a list and overlaps
// between include/exclude lists of the same kind.
func validateFilterLists(f FilterConfig) error {
	check := func(path string, lists ...[]string) error {
		seen := map[string]int{}
		for li, list := range lists {
			for _, v := range list {
				seen[v] |= 1 << li
			}
		}
		for v, mask := range seen {
			if mask == 0b11 {
				return errors.NewConflictError(
					"Conflicting filter configuration",
					fmt.Sprintf("%s: %q appears in both the include and exclude list", path, v),
					"Remove the duplicate entry from one of the lists",
					nil,
				)
			}
		}
		return nil
	}
	if err := check("monitor.filter.{include,exclude}_paths", f.IncludePaths, f.ExcludePaths); err != nil {
		return err
	}
	if err := check("monitor.filter.{include,exclude}_dirnames", f.IncludeDirnames, f.ExcludeDirnames); err != nil {
		return err
	}
	if err := check("monitor.filter.{include,exclude}_globs", f.IncludeGlobs, f.ExcludeGlobs); err != nil {
		return err
	}
	for _, list := range [][]string{f.IncludePaths, f.ExcludePaths, f.IncludeDirnames, f.ExcludeDirnames, f.IncludeGlobs, f.ExcludeGlobs} {
		dupCheck := map[string]bool{}
		for _, v := range list {
			if dupCheck[v] {
				return errors.NewConflictError(
					"Duplicate filter entry",
					fmt.Sprintf("%q appears more than once in the same filter list", v),
					"Remove the duplicate entry",
					nil,
				)
			}
			dupCheck[v] = true
		}
	}
	return nil
}

// Save writes cfg to {WKS_HOME}/config.json, creating WKS_HOME if needed.
// Mutating commands call Save and must tell the user to restart the
// daemon, since configuration is not hot-reloaded.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTo(cfg, path)
}

// SaveTo writes cfg as indented JSON to an explicit path.
func SaveTo(cfg *Config, path string) error {
	data, err := jsonMarshalIndent(cfg)
	if err != nil {
		return errors.NewInternalError(
			"Cannot encode configuration",
			"JSON marshaling failed unexpectedly",
			"This is a bug. Please report it with your configuration details",
			err,
		)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errors.NewPermissionError(
			"Cannot create configuration directory",
			fmt.Sprintf("Permission denied creating %s", dir),
			"Check directory permissions",
			err,
		)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.NewPermissionError(
			"Cannot write configuration file",
			fmt.Sprintf("Permission denied writing to %s", path),
			"Check file permissions and available disk space",
			err,
		)
	}
	return nil
}
