package workspace

import (
	"context"
	"math"
	"runtime"
	"runtime/debug"
	"time"

	"go.uber.org/zap"
)

const (
	// PurgeInterval is the unconditional parse cache purge period.
	PurgeInterval = 5 * time.Minute
	// MemoryCheckInterval is how often heap usage is sampled.
	MemoryCheckInterval = 30 * time.Second
	// MemoryThreshold is the heap share of the limit that triggers a purge.
	MemoryThreshold = 0.85
)

// memoryPressure reports whether heap in use exceeds the threshold of the
// soft memory limit, or of the memory obtained from the OS when no limit is
// set.
func memoryPressure() bool {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	limit := debug.SetMemoryLimit(-1)
	budget := float64(ms.Sys)
	if limit > 0 && limit != math.MaxInt64 {
		budget = float64(limit)
	}
	if budget == 0 {
		return false
	}
	return float64(ms.HeapInuse) > budget*MemoryThreshold
}

// MonitorMemory purges the parse cache every PurgeInterval and whenever
// memory pressure is detected. It returns when ctx is done.
func (c *Coordinator) MonitorMemory(ctx context.Context) {
	purge := time.NewTicker(PurgeInterval)
	defer purge.Stop()
	check := time.NewTicker(MemoryCheckInterval)
	defer check.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-purge.C:
			n := c.cache.purge()
			c.log.Debug("parse cache purged", zap.Int("entries", n))
		case <-check.C:
			if c.pressure() {
				n := c.cache.purge()
				c.log.Info("parse cache purged under memory pressure", zap.Int("entries", n))
			}
		}
	}
}
