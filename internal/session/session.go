package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/joshhsoj1902/retro-stats-exporter/internal/logger"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/retroachievements"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/settings"
)

var ErrNotLoggedIn = errors.New("no RetroAchievements credentials configured")

// SettingsStore is the part of the settings file a session needs
type SettingsStore interface {
	GetString(key, def string) string
	GetBool(key string, def bool) bool
	Set(key string, value any)
	Commit() error
}

// ClientFactory builds an API client for one set of credentials
type ClientFactory func(username, apiKey string) *retroachievements.Client

// Session exposes the credentials and the hidden flag of the user driving
// the UI. Every read goes to the settings store, so a document replaced
// through a settings transfer takes effect on the next call.
type Session struct {
	mu        sync.Mutex
	store     SettingsStore
	newClient ClientFactory
}

func New(store SettingsStore, newClient ClientFactory) *Session {
	return &Session{
		store:     store,
		newClient: newClient,
	}
}

// Login replaces the stored credentials. They are not checked against the
// service; the first API call reports ErrInvalidAuth if they are wrong.
func (s *Session) Login(username, apiKey string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Set(settings.KeyUsername, username)
	s.store.Set(settings.KeyAPIKey, apiKey)
	if err := s.store.Commit(); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}

	logger.Log.WithField("username", username).Info("RetroAchievements credentials updated")
	return nil
}

func (s *Session) credentials() (string, string) {
	return s.store.GetString(settings.KeyUsername, ""), s.store.GetString(settings.KeyAPIKey, "")
}

func (s *Session) IsLoggedIn() bool {
	username, apiKey := s.credentials()
	return username != "" && apiKey != ""
}

func (s *Session) Username() string {
	username, _ := s.credentials()
	return username
}

func (s *Session) SetHidden(hidden bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.Set(settings.KeyHidden, hidden)
	if err := s.store.Commit(); err != nil {
		return fmt.Errorf("failed to save hidden flag: %w", err)
	}
	return nil
}

func (s *Session) Hidden() bool {
	return s.store.GetBool(settings.KeyHidden, false)
}

// Client returns an API client for the current credentials
func (s *Session) Client() (*retroachievements.Client, error) {
	username, apiKey := s.credentials()
	if username == "" || apiKey == "" {
		return nil, ErrNotLoggedIn
	}
	return s.newClient(username, apiKey), nil
}

// RecentlyPlayedGames lists the logged-in user's recently played games
func (s *Session) RecentlyPlayedGames(ctx context.Context, count, offset int) ([]retroachievements.Game, error) {
	client, err := s.Client()
	if err != nil {
		return nil, err
	}
	return client.GetUserRecentlyPlayedGames(ctx, client.Username(), count, offset)
}

// GameInfoAndUserProgress fetches one game with the logged-in user's progress
func (s *Session) GameInfoAndUserProgress(ctx context.Context, gameID int64) (retroachievements.Game, error) {
	client, err := s.Client()
	if err != nil {
		return retroachievements.Game{}, err
	}
	return client.GetGameInfoAndUserProgress(ctx, client.Username(), gameID)
}
