package app

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/msealand/fastuiupdates/internal/metrics"
	"github.com/msealand/fastuiupdates/internal/storage"
)

// runJanitor runs periodic background maintenance tasks:
//   - Prune the recorded sample history down to keep entries.
//   - Update the RecordDBSizeBytes Prometheus gauge (for on-disk stores).
//
// It returns when ctx is cancelled.
func runJanitor(ctx context.Context, store storage.Store, keep int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := store.Prune(keep); err != nil {
				log.Warn().Err(err).Msg("janitor: record prune failed")
			}
			if path := store.DBPath(); path != "" {
				if info, err := os.Stat(path); err == nil {
					metrics.RecordDBSizeBytes.Set(float64(info.Size()))
				}
			}
		}
	}
}
