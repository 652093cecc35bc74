package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/api"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/cache"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/logger"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/polling"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/retroachievements"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/romhash"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/session"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/settings"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/transfer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration from environment variables
	config, err := loadConfig()
	if err != nil {
		logger.Log.WithError(err).Fatal("Invalid configuration")
	}
	logger.Configure(config.LogLevel, config.LogFormat)

	logger.Log.Info("Starting retro-stats-exporter")
	logger.Log.WithFields(logrus.Fields{
		"port":                 config.Port,
		"settings_dir":         config.SettingsDir,
		"redis_addr":           config.RedisAddr,
		"ra_base_url":          config.RABaseURL,
		"hash_binary":          config.HashBinary,
		"poll_users":           config.PollUsers,
		"poll_interval":        config.PollIntervalNormal,
		"poll_interval_active": config.PollIntervalActive,
		"transfer_strict":      config.TransferStrict,
	}).Info("Configuration loaded")

	// Settings file, migrated from older layouts first
	if err := settings.Migrate(config.SettingsDir, config.LegacySettingsDir); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate settings")
	}
	store := settings.New(config.SettingsDir)
	if err := store.Read(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to read settings")
	}

	kv, closeCache := newCache(config)
	defer closeCache()

	httpClient := &http.Client{Timeout: config.RATimeout}
	sess := session.New(store, func(username, apiKey string) *retroachievements.Client {
		return retroachievements.NewClient(username, apiKey,
			retroachievements.WithBaseURL(config.RABaseURL),
			retroachievements.WithHTTPClient(httpClient),
		)
	})
	if !sess.IsLoggedIn() {
		logger.Log.Warn("No RetroAchievements credentials stored - log in from the plugin UI")
	}

	collector := sess.Collector(kv, retroachievements.NewMetrics(prometheus.DefaultRegisterer))
	tr := transfer.New(store,
		transfer.WithStrict(config.TransferStrict),
		transfer.WithMetrics(transfer.NewMetrics(prometheus.DefaultRegisterer)),
	)

	var hasher romhash.Hasher = romhash.MD5{}
	if config.HashBinary != "" {
		hasher = romhash.NewExec(config.HashBinary)
	}
	hasher = romhash.NewCached(hasher, kv)

	// Users scraped over HTTP join the configured ones in background polling
	pollingManager := polling.NewManager(collector, config.PollIntervalNormal, config.PollIntervalActive)
	for _, username := range config.PollUsers {
		pollingManager.RegisterUser(username)
	}

	handlers := api.NewHandlers(collector, sess, tr, hasher, api.WithRegistrar(pollingManager))

	// Create router
	router := api.NewRouter(handlers)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.WithField("port", config.Port).Info("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server...")

	logger.Log.Info("Stopping polling manager")
	pollingManager.Stop()

	// Shutdown HTTP server with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Server exited")
}

type Config struct {
	Port      int    `env:"PORT" envDefault:"8000"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	SettingsDir       string `env:"SETTINGS_DIR" envDefault:"./settings"`
	LegacySettingsDir string `env:"LEGACY_SETTINGS_DIR"`

	RABaseURL string        `env:"RA_BASE_URL" envDefault:"https://retroachievements.org"`
	RATimeout time.Duration `env:"RA_TIMEOUT" envDefault:"10s"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	HashBinary string `env:"HASH_BINARY"`

	PollUsers          []string      `env:"POLL_USERS" envSeparator:","`
	PollIntervalNormal time.Duration `env:"POLL_INTERVAL_NORMAL" envDefault:"15m"`
	PollIntervalActive time.Duration `env:"POLL_INTERVAL_ACTIVE" envDefault:"5m"`

	TransferStrict bool `env:"TRANSFER_STRICT" envDefault:"false"`
}

func loadConfig() (Config, error) {
	config, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse environment: %w", err)
	}
	if config.PollIntervalNormal <= 0 || config.PollIntervalActive <= 0 {
		return Config{}, errors.New("poll intervals must be positive")
	}
	if config.RATimeout <= 0 {
		return Config{}, errors.New("RA_TIMEOUT must be positive")
	}
	return config, nil
}

// newCache connects to Redis when an address is configured and falls back
// to process memory otherwise
func newCache(config Config) (cache.Store, func()) {
	if config.RedisAddr == "" {
		logger.Log.Info("REDIS_ADDR not set - using in-memory cache")
		return cache.NewMemory(), func() {}
	}

	redisCache := cache.New(config.RedisAddr, config.RedisPassword, config.RedisDB)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisCache.Ping(ctx); err != nil {
		logger.Log.WithError(err).WithField("redis_addr", config.RedisAddr).Warn("Redis unreachable - using in-memory cache")
		_ = redisCache.Close()
		return cache.NewMemory(), func() {}
	}

	return redisCache, func() {
		if err := redisCache.Close(); err != nil {
			logger.Log.WithError(err).Warn("Failed to close Redis connection")
		}
	}
}
