package retroachievements

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	ModeNormal   = "normal"
	ModeHardcore = "hardcore"
)

type Metrics struct {
	completion *prometheus.GaugeVec
	awarded    *prometheus.GaugeVec
	possible   *prometheus.GaugeVec
	score      *prometheus.GaugeVec
	rank       *prometheus.GaugeVec
}

// NewMetrics creates the progress gauges and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	gameLabels := []string{"game_id", "title", "console", "username", "mode"}

	m := &Metrics{
		completion: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "retroachievements",
			Subsystem: "game",
			Name:      "completion_percent",
			Help:      "Share of a game's achievements the user has unlocked (0-100)",
		}, gameLabels),
		awarded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "retroachievements",
			Subsystem: "game",
			Name:      "achievements_awarded",
			Help:      "Number of a game's achievements the user has unlocked",
		}, gameLabels),
		possible: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "retroachievements",
			Subsystem: "game",
			Name:      "achievements_possible",
			Help:      "Number of achievements a game has",
		}, []string{"game_id", "title", "console", "username"}),
		score: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "retroachievements",
			Subsystem: "user",
			Name:      "score",
			Help:      "Total hardcore points of the user",
		}, []string{"username"}),
		rank: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "retroachievements",
			Subsystem: "user",
			Name:      "rank",
			Help:      "Site-wide rank of the user",
		}, []string{"username"}),
	}

	reg.MustRegister(m.completion, m.awarded, m.possible, m.score, m.rank)
	return m
}

// ReportGame reports the progress of one recently played game in both modes
func (m *Metrics) ReportGame(p GameProgress, username string) {
	gameID := strconv.FormatInt(p.GameID, 10)

	m.possible.With(prometheus.Labels{
		"game_id":  gameID,
		"title":    p.Title,
		"console":  p.Console,
		"username": username,
	}).Set(float64(p.NumAchievements))

	for mode, achieved := range map[string]int64{
		ModeNormal:   p.NumAchieved,
		ModeHardcore: p.NumAchievedHardcore,
	} {
		labels := prometheus.Labels{
			"game_id":  gameID,
			"title":    p.Title,
			"console":  p.Console,
			"username": username,
			"mode":     mode,
		}
		m.awarded.With(labels).Set(float64(achieved))
		m.completion.With(labels).Set(completionPercent(achieved, p.NumAchievements))
	}
}

// ReportRank reports the user's score, and the rank when the service sent one
func (m *Metrics) ReportRank(username string, score int64, rank *int64) {
	m.score.WithLabelValues(username).Set(float64(score))
	if rank != nil {
		m.rank.WithLabelValues(username).Set(float64(*rank))
	}
}

func completionPercent(achieved, possible int64) float64 {
	if possible <= 0 {
		return 0
	}
	pct := fractionToPercentage(float64(achieved) / float64(possible))
	if pct == nil {
		return 0
	}
	return *pct
}
