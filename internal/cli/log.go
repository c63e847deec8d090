package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger that writes to w at the given level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the completion of a batch of work with its elapsed time.
// It is meant for sequential use by a single goroutine.
type progress struct {
	logger *log.Logger
	start  time.Time
	count  int
	failed int
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// record counts one finished item.
func (p *progress) record(err error) {
	p.count++
	if err != nil {
		p.failed++
	}
}

// done logs msg along with the number of items and the elapsed time,
// rounded to the millisecond. Example: "Rendered 3 files (1 failed, 12ms)".
func (p *progress) done(msg string) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	if p.failed > 0 {
		p.logger.Warnf("%s %d files (%d failed, %s)", msg, p.count, p.failed, elapsed)
		return
	}
	p.logger.Infof("%s %d files (%s)", msg, p.count, elapsed)
}
