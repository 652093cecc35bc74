package api

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/logger"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/retroachievements"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/romhash"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/session"
	"github.com/joshhsoj1902/retro-stats-exporter/internal/transfer"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

type Collector interface {
	Collect(ctx context.Context, username string) error
}

// Registrar adds users to background polling
type Registrar interface {
	RegisterUser(username string)
}

type Handlers struct {
	collector Collector
	registrar Registrar
	session   *session.Session
	hasher    romhash.Hasher
	gatherer  prometheus.Gatherer

	// transfer is single-flight; every chunk call holds transferMu
	transferMu sync.Mutex
	transfer   *transfer.Transfer

	methods map[string]methodFunc
}

type Option func(*Handlers)

// WithRegistrar registers every user whose metrics are scraped for
// background polling
func WithRegistrar(r Registrar) Option {
	return func(h *Handlers) {
		h.registrar = r
	}
}

// WithGatherer serves metrics from g instead of the default registry
func WithGatherer(g prometheus.Gatherer) Option {
	return func(h *Handlers) {
		h.gatherer = g
	}
}

func NewHandlers(collector Collector, sess *session.Session, tr *transfer.Transfer, hasher romhash.Hasher, opts ...Option) *Handlers {
	h := &Handlers{
		collector: collector,
		session:   sess,
		transfer:  tr,
		hasher:    hasher,
		gatherer:  prometheus.DefaultGatherer,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.methods = h.pluginMethods()
	return h
}

// HandleAllMetrics handles /metrics - serves only system metrics (Go runtime, process, etc.)
func (h *Handlers) HandleAllMetrics(w http.ResponseWriter, r *http.Request) {
	logger.Log.WithFields(logrus.Fields{
		"path":   r.URL.Path,
		"method": r.Method,
		"ip":     r.RemoteAddr,
	}).Debug("System metrics request received")

	SystemMetricsHandler(h.gatherer).ServeHTTP(w, r)
}

// HandleUserMetrics handles /metrics/retroachievements/{username}
func (h *Handlers) HandleUserMetrics(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	username := chi.URLParam(r, "username")

	logger.Log.WithFields(logrus.Fields{
		"path":     r.URL.Path,
		"method":   r.Method,
		"username": username,
		"ip":       r.RemoteAddr,
	}).Info("RetroAchievements metrics request received")

	if username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	if h.collector == nil {
		logger.Log.Error("RetroAchievements collector not initialized")
		http.Error(w, "RetroAchievements collector not initialized", http.StatusServiceUnavailable)
		return
	}

	err := h.collector.Collect(r.Context(), username)
	switch {
	case err == nil:
	case errors.Is(err, session.ErrNotLoggedIn):
		logger.Log.WithField("username", username).Warn("RetroAchievements metrics requested before login")
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	case errors.Is(err, retroachievements.ErrInvalidAuth):
		logger.Log.WithError(err).WithField("username", username).Error("RetroAchievements rejected the configured credentials")
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	case errors.Is(err, retroachievements.ErrUnexpectedStatus):
		// Throttling and maintenance pages: serve the last reported values
		logger.Log.WithFields(logrus.Fields{
			"username": username,
			"error":    err.Error(),
			"duration": time.Since(start),
		}).Warn("RetroAchievements unavailable - serving last reported metrics only")
		RetroAchievementsHandler(h.gatherer).ServeHTTP(w, r)
		return
	default:
		logger.Log.WithFields(logrus.Fields{
			"username": username,
			"error":    err.Error(),
			"duration": time.Since(start),
		}).Error("Failed to collect RetroAchievements metrics")
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	if h.registrar != nil {
		h.registrar.RegisterUser(username)
	}

	logger.Log.WithFields(logrus.Fields{
		"username": username,
		"duration": time.Since(start),
	}).Info("RetroAchievements metrics collection completed successfully")

	RetroAchievementsHandler(h.gatherer).ServeHTTP(w, r)
}

// HandleRoot serves a simple front page
func (h *Handlers) HandleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	_, _ = w.Write([]byte(`<html>
<head><title>Retro Stats Exporter</title></head>
<body>
	<h1>Retro Stats Exporter</h1>
	<p>Prometheus metrics exporter and plugin backend for RetroAchievements</p>
	<h2>Endpoints:</h2>
	<ul>
		<li><a href="/metrics">/metrics</a> - System metrics only (Go runtime, process, etc.)</li>
		<li><a href="/metrics/retroachievements/{username}">/metrics/retroachievements/{username}</a> - Game progress, score and rank of a user</li>
		<li>POST /plugin/{method} - Plugin method calls (JSON arguments in, {"success", "result"} out)</li>
	</ul>
</body>
</html>`))
}
