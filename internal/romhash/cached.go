package romhash

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joshhsoj1902/retro-stats-exporter/internal/cache"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/logger"
	"github.com/sirupsen/logrus"
)

const digestTTL = 30 * 24 * time.Hour

// Cached remembers digests per file. The key includes size and modification
// time, so a replaced file is hashed again.
type Cached struct {
	next  Hasher
	cache cache.Store
}

func NewCached(next Hasher, store cache.Store) *Cached {
	return &Cached{
		next:  next,
		cache: store,
	}
}

func (c *Cached) Hash(ctx context.Context, path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to stat ROM: %w", err)
	}

	cacheKey := fmt.Sprintf("romhash:%s:%d:%d", path, info.Size(), info.ModTime().UnixNano())
	if cached, exists := c.cache.Get(cacheKey); exists && len(cached) > 0 {
		logger.Log.WithFields(logrus.Fields{
			"path":  path,
			"cache": "hit",
		}).Debug("Retrieved ROM hash from cache")
		return string(cached), nil
	}

	digest, err := c.next.Hash(ctx, path)
	if err != nil {
		return "", err
	}

	c.cache.Set(cacheKey, []byte(digest), digestTTL)
	logger.Log.WithFields(logrus.Fields{
		"path":   path,
		"digest": digest,
	}).Debug("Hashed ROM")
	return digest, nil
}
