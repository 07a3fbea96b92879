package background

import (
	"context"
	"errors"
	"time"

	"sophrologie-backend/internal/constants"
	"sophrologie-backend/internal/repository"
	"sophrologie-backend/internal/service"
	"sophrologie-backend/pkg/logger"
)

// PruneVersionsJob trims each page's history down to the newest keep
// snapshots. Restores go through the save path, so pruning never touches
// the live document.
func PruneVersionsJob(versions repository.PageVersionRepository, keep int) Job {
	return Job{
		Name:    "prune-page-versions",
		Timeout: 2 * time.Minute,
		RetryPolicy: RetryPolicy{
			MaxRetries: 2,
			Backoff:    30 * time.Second,
		},
		Run: func(ctx context.Context) error {
			var firstErr error
			for _, pageID := range constants.PageIDs() {
				if err := ctx.Err(); err != nil {
					return err
				}
				removed, err := versions.PruneOlderThan(pageID, keep)
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					logger.Error(err, "Failed to prune page versions", map[string]interface{}{"page_id": pageID})
					continue
				}
				if removed > 0 {
					logger.Info("Pruned page versions", map[string]interface{}{"page_id": pageID, "removed": removed})
				}
			}
			return firstErr
		},
	}
}

// WarmPageCacheJob loads every known page through the service layer so the
// cache stays populated after restarts and invalidations.
func WarmPageCacheJob(pages *service.PageService) Job {
	return Job{
		Name:    "warm-page-cache",
		Timeout: time.Minute,
		Run: func(ctx context.Context) error {
			for _, pageID := range constants.PageIDs() {
				if err := ctx.Err(); err != nil {
					return err
				}
				if _, err := pages.GetPage(pageID); err != nil && !errors.Is(err, service.ErrPageNotFound) {
					return err
				}
			}
			return nil
		},
	}
}
