package jobs

import (
	"context"
	"time"

	"leadfinder/cmd/internal/logging"
)

const CleanInterval = 1 * time.Hour

type CachePruner interface {
	Prune(ctx context.Context) (int64, error)
}

// CacheCleaner sweeps expired cache entries on a fixed interval.
type CacheCleaner struct {
	cache    CachePruner
	interval time.Duration
	log      logging.Logger
}

func NewCacheCleaner(cache CachePruner, interval time.Duration, logger logging.Logger) *CacheCleaner {
	if interval <= 0 {
		interval = CleanInterval
	}
	return &CacheCleaner{
		cache:    cache,
		interval: interval,
		log:      logger,
	}
}

// Start blocks until ctx is done.
func (c *CacheCleaner) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.log.Infof("Cache cleaner cron started")

	for {
		select {
		case <-ctx.Done():
			c.log.Infof("Stopping cache cleaner...")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *CacheCleaner) cleanup(ctx context.Context) {
	n, err := c.cache.Prune(ctx)
	if err != nil {
		c.log.Errorf("Cleaner: failed to delete expired cache entries: %v", err)
		return
	}

	c.log.Debugf("Cleaner: swept %d expired cache entries", n)
}
