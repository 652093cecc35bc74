package retroachievements

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/goccy/go-json"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/cache"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/logger"
	"github.com/sirupsen/logrus"
)

const (
	recentGamesCount = 50
	lastPlayedTTL    = 7 * 24 * time.Hour
)

// GameProgress is the part of a recently played game the collector reports
// and caches
type GameProgress struct {
	GameID              int64  `json:"game_id"`
	Title               string `json:"title"`
	Console             string `json:"console"`
	NumAchievements     int64  `json:"num_achievements"`
	NumAchieved         int64  `json:"num_achieved"`
	NumAchievedHardcore int64  `json:"num_achieved_hardcore"`
	LastPlayed          string `json:"last_played"`
}

// NewGameProgress flattens a Game. Games without an id cannot be labelled
// and are reported as not ok.
func NewGameProgress(g Game) (GameProgress, bool) {
	if g.GameID == nil {
		return GameProgress{}, false
	}
	return GameProgress{
		GameID:              *g.GameID,
		Title:               deref(g.Title),
		Console:             deref(g.ConsoleName),
		NumAchievements:     deref(g.NumAchievements),
		NumAchieved:         deref(g.NumAchieved),
		NumAchievedHardcore: deref(g.NumAchievedHardcore),
		LastPlayed:          deref(g.LastPlayed),
	}, true
}

type Collector struct {
	client  *Client
	cache   cache.Store
	metrics *Metrics
	backoff *Backoff
}

func NewCollector(client *Client, store cache.Store, metrics *Metrics) *Collector {
	return &Collector{
		client:  client,
		cache:   store,
		metrics: metrics,
		backoff: NewBackoff(store),
	}
}

// Collect collects and reports progress metrics for a user
func (c *Collector) Collect(ctx context.Context, username string) error {
	logger.Log.WithField("username", username).Info("Starting RetroAchievements metrics collection")

	if until, blocked := c.backoff.Blocked(); blocked {
		return fmt.Errorf("%w: backing off until %s", ErrRateLimited, until.Format(time.RFC3339))
	}

	games, err := c.getRecentGames(ctx, username)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"username": username,
			"error":    err.Error(),
		}).Error("Failed to get recently played games")
		return fmt.Errorf("failed to get recently played games: %w", err)
	}

	logger.Log.WithFields(logrus.Fields{
		"username":   username,
		"game_count": len(games),
	}).Info("Processing recently played games")

	for _, game := range games {
		c.metrics.ReportGame(game, username)
	}

	score, rank, err := c.getRankAndScore(ctx, username)
	if err != nil {
		if errors.Is(err, ErrInvalidAuth) {
			return fmt.Errorf("failed to get rank and score: %w", err)
		}
		logger.Log.WithFields(logrus.Fields{
			"username": username,
			"error":    err.Error(),
		}).Warn("Failed to get rank and score, continuing")
	} else {
		c.metrics.ReportRank(username, score, rank)
	}

	logger.Log.WithField("username", username).Info("Completed RetroAchievements metrics collection")
	return nil
}

// getRecentGames retrieves recently played games, using cache if available
func (c *Collector) getRecentGames(ctx context.Context, username string) ([]GameProgress, error) {
	cacheKey := recentGamesKey(username)
	if cachedData, exists := c.cache.Get(cacheKey); exists {
		var games []GameProgress
		if err := json.Unmarshal(cachedData, &games); err == nil {
			logger.Log.WithFields(logrus.Fields{
				"username": username,
				"cache":    "hit",
			}).Debug("Retrieved recently played games from cache")
			return games, nil
		}
		logger.Log.WithField("username", username).Warn("Cache hit but failed to unmarshal, fetching fresh")
	}

	logger.Log.WithFields(logrus.Fields{
		"username": username,
		"cache":    "miss",
	}).Debug("Fetching recently played games from API")

	resp, err := c.client.GetUserRecentlyPlayedGames(ctx, username, recentGamesCount, 0)
	c.observe(err)
	if err != nil {
		return nil, err
	}

	games := make([]GameProgress, 0, len(resp))
	for _, g := range resp {
		if p, ok := NewGameProgress(g); ok {
			games = append(games, p)
		}
	}

	if data, err := json.Marshal(games); err == nil {
		// Progress only moves while someone plays, a few minutes is enough
		ttl := 2*time.Minute + time.Duration(rand.Intn(180))*time.Second
		c.cache.Set(cacheKey, data, ttl)
		logger.Log.WithFields(logrus.Fields{
			"username": username,
			"ttl":      ttl.String(),
		}).Debug("Cached recently played games")
	}

	return games, nil
}

// getRankAndScore retrieves score and rank, using cache if available
func (c *Collector) getRankAndScore(ctx context.Context, username string) (int64, *int64, error) {
	type rankEntry struct {
		Score int64  `json:"score"`
		Rank  *int64 `json:"rank"`
	}

	cacheKey := fmt.Sprintf("ra:rank:%s", username)
	if cachedData, exists := c.cache.Get(cacheKey); exists {
		var entry rankEntry
		if err := json.Unmarshal(cachedData, &entry); err == nil {
			return entry.Score, entry.Rank, nil
		}
	}

	rec, err := c.client.GetUserRankAndScore(ctx, username)
	c.observe(err)
	if err != nil {
		return 0, nil, err
	}

	entry := rankEntry{Rank: rec.getInt(rankFields.Rank)}
	if score := rec.getInt(rankFields.Score); score != nil {
		entry.Score = *score
	}

	if data, err := json.Marshal(entry); err == nil {
		ttl := 30*time.Minute + time.Duration(rand.Intn(600))*time.Second
		c.cache.Set(cacheKey, data, ttl)
	}

	return entry.Score, entry.Rank, nil
}

// IsActive reports whether the user started or continued a session since
// the previous call, by comparing the newest LastPlayed timestamp against
// the one remembered in the cache. The first observation of a user is not
// counted as activity.
func (c *Collector) IsActive(ctx context.Context, username string) (bool, error) {
	if _, blocked := c.backoff.Blocked(); blocked {
		return false, ErrRateLimited
	}

	games, err := c.client.GetUserRecentlyPlayedGames(ctx, username, 1, 0)
	c.observe(err)
	if err != nil {
		return false, err
	}

	var newest string
	for _, g := range games {
		// timestamps are "YYYY-MM-DD hh:mm:ss" and sort as text
		if lp := deref(g.LastPlayed); lp > newest {
			newest = lp
		}
	}
	if newest == "" {
		return false, nil
	}

	markerKey := fmt.Sprintf("ra:last_played:%s", username)
	previous, seen := c.cache.Get(markerKey)
	c.cache.Set(markerKey, []byte(newest), lastPlayedTTL)

	active := seen && string(previous) != newest
	if active {
		// Drop the cached progress so the next collection sees new unlocks
		c.cache.Delete(recentGamesKey(username))
		logger.Log.WithFields(logrus.Fields{
			"username":    username,
			"last_played": newest,
		}).Debug("RetroAchievements user is active")
	}
	return active, nil
}

// observe feeds the outcome of an API call into the backoff
func (c *Collector) observe(err error) {
	switch {
	case err == nil:
		c.backoff.RecordSuccess()
	case errors.Is(err, ErrRateLimited):
		c.backoff.RecordRateLimited()
	}
}

func recentGamesKey(username string) string {
	return fmt.Sprintf("ra:recent_games:%s", username)
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
