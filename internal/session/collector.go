package session

import (
	"context"

	"github.com/joshhsoj1902/retro-stats-exporter/internal/cache"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/retroachievements"
)

// Collector runs progress collection with whatever credentials the session
// holds at call time, so a login from the UI takes effect on the next scrape
type Collector struct {
	session *Session
	cache   cache.Store
	metrics *retroachievements.Metrics
}

func (s *Session) Collector(store cache.Store, metrics *retroachievements.Metrics) *Collector {
	return &Collector{
		session: s,
		cache:   store,
		metrics: metrics,
	}
}

func (c *Collector) current() (*retroachievements.Collector, error) {
	client, err := c.session.Client()
	if err != nil {
		return nil, err
	}
	return retroachievements.NewCollector(client, c.cache, c.metrics), nil
}

func (c *Collector) Collect(ctx context.Context, username string) error {
	collector, err := c.current()
	if err != nil {
		return err
	}
	return collector.Collect(ctx, username)
}

func (c *Collector) IsActive(ctx context.Context, username string) (bool, error) {
	collector, err := c.current()
	if err != nil {
		return false, err
	}
	return collector.IsActive(ctx, username)
}
