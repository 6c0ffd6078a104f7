// cmd/verifact/scheduler.go
package main

import (
	"github.com/robfig/cron/v3"
)

// StartScheduler installs the cache maintenance jobs: a daily sweep of the
// on-disk verification store (applies TTL and size rules to the file) and
// an hourly cleanup of the in-memory cache.
func StartScheduler(store *ResultStore, memory *Cache) *cron.Cron {
	c := cron.New()

	if _, err := c.AddFunc("0 3 * * *", func() {
		store.Sweep()
		Logger().Info("Verification cache swept, %d entries remain", store.Len())
	}); err != nil {
		Logger().Warning("Failed to schedule cache sweep: %v", err)
	}

	if _, err := c.AddFunc("@hourly", func() {
		if removed := memory.CleanExpired(); removed > 0 {
			Logger().Debug("Dropped %d expired in-memory cache items", removed)
		}
	}); err != nil {
		Logger().Warning("Failed to schedule memory cache cleanup: %v", err)
	}

	c.Start()
	return c
}
