// Package cli implements the trackview command-line interface.
//
// The CLI assembles a browser from a TOML config (or a bare data directory)
// and exposes it in several ways. It is built using cobra and logs through
// charmbracelet/log; --verbose (-v) switches to debug-level output.
//
// # Commands
//
//   - render: Draw all tracks for a region to PNG, SVG or PDF
//   - serve: Serve tracks, hit-testing and view changes over HTTP
//   - browse: Explore a sample interactively in the terminal
//   - tracks: List the configured tracks
//   - cache: Inspect or clear the persistent data cache
//
// # Example
//
//	trackview render --data ./data --sample s1 --chrom 1 -o panel.png
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Rendered 5 tracks (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
