package polling

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/joshhsoj1902/retro-stats-exporter/internal/logger"
	"github.com/sirupsen/logrus"
)

type Collector interface {
	Collect(ctx context.Context, username string) error
	IsActive(ctx context.Context, username string) (bool, error)
}

type Manager struct {
	collector      Collector
	normalInterval time.Duration
	activeInterval time.Duration

	// Track registered users
	users map[string]*userState

	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type userState struct {
	lastActive bool
	lastPoll   time.Time
	mu         sync.Mutex
}

func NewManager(collector Collector, normalInterval, activeInterval time.Duration) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		collector:      collector,
		normalInterval: normalInterval,
		activeInterval: activeInterval,
		users:          make(map[string]*userState),
		ctx:            ctx,
		cancel:         cancel,
	}
}

// RegisterUser registers a RetroAchievements user for background polling.
// Registering a user twice is a no-op.
func (m *Manager) RegisterUser(username string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctx.Err() != nil {
		return
	}
	if _, exists := m.users[username]; exists {
		return
	}

	state := &userState{lastPoll: time.Now()}
	m.users[username] = state

	logger.Log.WithField("username", username).Info("Registered user for background polling")

	// Start polling goroutine for this user
	m.wg.Add(1)
	go m.pollUser(username, state)
}

// Users lists the registered users in name order
func (m *Manager) Users() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]string, 0, len(m.users))
	for username := range m.users {
		users = append(users, username)
	}
	sort.Strings(users)
	return users
}

// IsUserActive reports the activity seen by the last poll of a user
func (m *Manager) IsUserActive(username string) bool {
	m.mu.RLock()
	state, exists := m.users[username]
	m.mu.RUnlock()
	if !exists {
		return false
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	return state.lastActive
}

// pollUser polls a user with adaptive interval
func (m *Manager) pollUser(username string, state *userState) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.normalInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			if err := m.collector.Collect(m.ctx, username); err != nil {
				logger.Log.WithFields(logrus.Fields{
					"username": username,
					"error":    err.Error(),
				}).Error("Background collection failed")
			}

			active, err := m.collector.IsActive(m.ctx, username)
			if err != nil {
				logger.Log.WithFields(logrus.Fields{
					"username": username,
					"error":    err.Error(),
				}).Warn("Failed to check user activity")
				continue
			}

			state.mu.Lock()
			changed := state.lastActive != active
			state.lastActive = active
			state.lastPoll = time.Now()
			state.mu.Unlock()

			// Adjust polling interval based on activity
			if active {
				ticker.Reset(m.activeInterval)
			} else {
				ticker.Reset(m.normalInterval)
			}

			if changed {
				logger.Log.WithFields(logrus.Fields{
					"username": username,
					"active":   active,
				}).Info("User activity changed")
			}
		}
	}
}

// Stop stops all polling
func (m *Manager) Stop() {
	m.mu.Lock()
	m.cancel()
	m.mu.Unlock()
	m.wg.Wait()
}
