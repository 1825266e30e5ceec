// Package timeouts provides centralized timeout values for database work.
//
// Handlers and background jobs wrap their contexts with these values so a
// stalled MongoDB never pins a request or a scheduler tick forever.
//
//   - Ping: health checks
//   - Short: single-document reads and small writes
//   - Batch: a whole formation run or content cleanup
package timeouts

import (
	"sync"
	"time"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing  = 2 * time.Second
	DefaultShort = 5 * time.Second
	DefaultBatch = 60 * time.Second
)

var (
	mu    sync.RWMutex
	ping  = DefaultPing
	short = DefaultShort
	batch = DefaultBatch
)

// Ping returns the timeout for connectivity checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for simple reads and writes.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Batch returns the timeout for a formation run or a cleanup pass.
func Batch() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return batch
}

// Config holds timeout overrides. Zero values keep the current value.
type Config struct {
	Ping  time.Duration
	Short time.Duration
	Batch time.Duration
}

// Configure applies overrides. Call it during startup.
func Configure(cfg Config) {
	mu.Lock()
	defer mu.Unlock()
	if cfg.Ping > 0 {
		ping = cfg.Ping
	}
	if cfg.Short > 0 {
		short = cfg.Short
	}
	if cfg.Batch > 0 {
		batch = cfg.Batch
	}
}
