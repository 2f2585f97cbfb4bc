// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import "path/filepath"

// Default returns a fully populated configuration for a fresh WKS_HOME,
// rooted at home. Every required field is given an explicit value — none
// is left to an implicit zero value once this is written to disk and
// reloaded.
func Default(home string) *Config {
	return &Config{
		Monitor: MonitorConfig{
			Priority: PriorityConfig{
				Dirs: map[string]float64{
					filepath.Join(home, "..", "Desktop"): 160.0,
				},
				DepthMultiplier:          0.9,
				UnderscoreMultiplier:     0.5,
				OnlyUnderscoreMultiplier: 0.1,
				ExtensionWeights:         map[string]float64{},
			},
			Filter: FilterConfig{
				IncludePaths:    []string{},
				ExcludePaths:    []string{},
				IncludeDirnames: []string{},
				ExcludeDirnames: []string{".git", "node_modules", "vendor", "_links"},
				IncludeGlobs:    []string{},
				ExcludeGlobs:    []string{"*.tmp", "*.lock"},
			},
			MaxDocuments: 50_000,
			MinPriority:  0.01,
		},
		Vault: VaultConfig{
			BasePath: filepath.Join(home, "vault"),
			Backend:  "obsidian",
		},
		Database: DatabaseConfig{
			Backend: "buntdb",
			Prefix:  "wks",
			Path:    filepath.Join(home, "wks.db"),
			Local:   true,
		},
		Service: ServiceConfig{
			Label:   "com.kraklabs.wks",
			LogPath: filepath.Join(home, "logfile"),
		},
		Daemon: DaemonConfig{
			SyncIntervalSecs:  2,
			EventQueueSize:    4096,
			ShutdownGraceSecs: 10,
		},
		Log: LogConfig{
			Path:                 filepath.Join(home, "logfile"),
			DebugRetentionDays:   3,
			InfoRetentionDays:    14,
			WarningRetentionDays: 30,
			ErrorRetentionDays:   90,
		},
		Transform: TransformConfig{
			CacheDir:     filepath.Join(home, "transform-cache"),
			MaxSizeBytes: 1 << 30, // 1 GiB
			Engines: []TransformEngineConfig{
				{Name: "dx", Ext: "txt"},
			},
		},
		Diff: DiffConfig{
			Engines: []string{"text"},
		},
		Index:  IndexConfig{},
		Search: SearchConfig{},
		Display: DisplayConfig{
			Format: "yaml",
		},
	}
}
