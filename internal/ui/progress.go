// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"os"

	"github.com/schollz/progressbar/v3"
)

// ProgressConfig controls whether progress bars render at all: JSON mode
// and quiet mode both suppress stage-2 rendering per the command protocol
// (stage 4 output must stay uncorrupted by interleaved bar redraws).
type ProgressConfig struct {
	Quiet bool
	JSON  bool
}

// NewBar creates a progress bar on standard error for a named phase, or a
// no-op bar (still safe to call Set64/Finish/Add on) when output is
// suppressed.
func NewBar(cfg ProgressConfig, total int64, description string) *progressbar.ProgressBar {
	if cfg.Quiet || cfg.JSON {
		return progressbar.DefaultSilent(total)
	}
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100_000_000),
		progressbar.OptionOnCompletion(func() { os.Stderr.Write([]byte("\n")) }),
		progressbar.OptionClearOnFinish(),
	)
}
