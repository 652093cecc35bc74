package retroachievements

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/cache"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/logger"
	"github.com/sirupsen/logrus"
)

const (
	backoffCacheKey   = "ra:rate_limit_state"
	initialBackoff    = 1 * time.Minute
	maxBackoff        = 1 * time.Hour
	backoffMultiplier = 2
)

type backoffState struct {
	BlockedUntil time.Time `json:"blocked_until"`
	Consecutive  int       `json:"consecutive_429"`
}

// Backoff keeps the rate limit state in the cache so every collector, and
// every process sharing a Redis, holds off together after a 429
type Backoff struct {
	cache cache.Store
	now   func() time.Time
}

func NewBackoff(store cache.Store) *Backoff {
	return &Backoff{
		cache: store,
		now:   time.Now,
	}
}

// Blocked reports whether API calls should be held back, and until when
func (b *Backoff) Blocked() (time.Time, bool) {
	state, ok := b.load()
	if !ok || !b.now().Before(state.BlockedUntil) {
		return time.Time{}, false
	}

	logger.Log.WithFields(logrus.Fields{
		"blocked_until":     state.BlockedUntil,
		"remaining_seconds": int(state.BlockedUntil.Sub(b.now()).Seconds()),
	}).Warn("RetroAchievements API is rate limited - holding back API calls")
	return state.BlockedUntil, true
}

// RecordRateLimited extends the backoff: 1m, 2m, 4m, ... up to an hour
func (b *Backoff) RecordRateLimited() time.Duration {
	state, _ := b.load()
	state.Consecutive++

	backoff := initialBackoff
	for i := 1; i < state.Consecutive && backoff < maxBackoff; i++ {
		backoff *= backoffMultiplier
	}
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	state.BlockedUntil = b.now().Add(backoff)

	logger.Log.WithFields(logrus.Fields{
		"consecutive_429": state.Consecutive,
		"blocked_until":   state.BlockedUntil,
		"backoff":         backoff.String(),
	}).Error("RetroAchievements API rate limit detected (429) - backing off")

	if data, err := json.Marshal(state); err == nil {
		// Keep the counter a while past the block so repeat offences escalate
		b.cache.Set(backoffCacheKey, data, backoff+maxBackoff)
	}
	return backoff
}

// RecordSuccess clears the state once the block has expired
func (b *Backoff) RecordSuccess() {
	state, ok := b.load()
	if !ok || b.now().Before(state.BlockedUntil) {
		return
	}
	b.cache.Delete(backoffCacheKey)
	logger.Log.Info("RetroAchievements API rate limit backoff cleared")
}

func (b *Backoff) load() (backoffState, bool) {
	var state backoffState
	data, exists := b.cache.Get(backoffCacheKey)
	if !exists {
		return state, false
	}
	if err := json.Unmarshal(data, &state); err != nil {
		logger.Log.WithError(err).Warn("Discarding unreadable rate limit state")
		b.cache.Delete(backoffCacheKey)
		return backoffState{}, false
	}
	return state, true
}
