// Package parallel splits index ranges across goroutines for the CPU layout
// converter.
package parallel

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Config controls parallel execution behavior.
type Config struct {
	Enabled      bool // Whether parallel execution is enabled.
	NumWorkers   int  // Maximum number of goroutines running at once.
	MinChunkSize int  // Minimum items per goroutine to avoid overhead.
}

// DefaultConfig returns defaults based on CPU count.
func DefaultConfig() Config {
	n := runtime.NumCPU()
	return Config{
		Enabled:      n > 1,
		NumWorkers:   n,
		MinChunkSize: 4096,
	}
}

// Sequential returns a Config that never spawns goroutines.
func Sequential() Config {
	return Config{Enabled: false}
}

// chunkSize returns the range length each goroutine receives, or 0 when the
// work should run on the calling goroutine.
func (cfg Config) chunkSize(n int) int {
	if !cfg.Enabled || cfg.NumWorkers <= 1 || n < 2*cfg.MinChunkSize {
		return 0
	}
	return max((n+cfg.NumWorkers-1)/cfg.NumWorkers, cfg.MinChunkSize, 1)
}

// ForRange calls f on consecutive half-open ranges covering [0, n).
// Ranges run concurrently when cfg allows it; the first error returned by
// any range is returned after all ranges finish.
func ForRange(n int, f func(start, end int) error, cfg Config) error {
	if n <= 0 {
		return nil
	}
	chunk := cfg.chunkSize(n)
	if chunk == 0 {
		return f(0, n)
	}

	var g errgroup.Group
	g.SetLimit(cfg.NumWorkers)
	for start := 0; start < n; start += chunk {
		start := start
		end := min(start+chunk, n)
		g.Go(func() error {
			return f(start, end)
		})
	}
	return g.Wait()
}
