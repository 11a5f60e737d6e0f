// Package progress computes and reports percent-complete of an upload.
package progress

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/hydrostore/s3check/s3types"
)

// Both trackers satisfy the coordinator's progress interface.
var (
	_ s3types.ProgressTracker = (*Counter)(nil)
	_ s3types.ProgressTracker = (*LogTracker)(nil)
)

// Percent returns how far a transfer has progressed, as a value in [0, 100].
//
// A total of zero (or less) is a degenerate input and reports 0 rather
// than dividing by zero. Values past the total clamp at 100.
func Percent(transferred, total int64) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(transferred) / float64(total) * 100
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}

// Counter accumulates transferred-byte observations and answers the
// current completion percentage. It is safe for concurrent use.
type Counter struct {
	mu          sync.Mutex
	transferred int64
	total       int64
	done        bool
	err         error
}

// NewCounter creates a Counter for a transfer of the given total size.
func NewCounter(total int64) *Counter {
	return &Counter{total: total}
}

// Update records the cumulative transferred byte count.
func (c *Counter) Update(bytesTransferred, totalBytes int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transferred = bytesTransferred
	if totalBytes > 0 {
		c.total = totalBytes
	}
}

// Complete marks the transfer as finished.
func (c *Counter) Complete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done = true
}

// Error records a transfer failure.
func (c *Counter) Error(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
}

// Transferred returns the cumulative byte count observed so far.
func (c *Counter) Transferred() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transferred
}

// Percent returns the current completion percentage.
func (c *Counter) Percent() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Percent(c.transferred, c.total)
}

// Done reports whether Complete has been called.
func (c *Counter) Done() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Err returns the recorded failure, if any.
func (c *Counter) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// LogTracker reports progress observations through a zerolog logger.
type LogTracker struct {
	log zerolog.Logger
}

// NewLogTracker creates a tracker that writes progress to log.
func NewLogTracker(log zerolog.Logger) *LogTracker {
	return &LogTracker{log: log}
}

// Update logs the cumulative transferred bytes and completion percentage.
func (t *LogTracker) Update(bytesTransferred, totalBytes int64) {
	t.log.Debug().
		Int64("transferred", bytesTransferred).
		Int64("total", totalBytes).
		Float64("percent", Percent(bytesTransferred, totalBytes)).
		Msg("upload progress")
}

// Complete logs the end of the transfer.
func (t *LogTracker) Complete() {
	t.log.Debug().Msg("upload complete")
}

// Error logs a transfer failure.
func (t *LogTracker) Error(err error) {
	t.log.Error().Err(err).Msg("upload failed")
}
