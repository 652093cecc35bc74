package transfer

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	directionReceive = "receive"
	directionSend    = "send"
)

// Metrics counts transfers per direction. A nil *Metrics records nothing.
type Metrics struct {
	transfers *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "retroachievements",
			Subsystem: "settings_transfer",
			Name:      "total",
			Help:      "Chunked settings transfers by direction and outcome",
		}, []string{"direction", "outcome"}),
	}
	reg.MustRegister(m.transfers)
	return m
}

func (m *Metrics) started(direction string)   { m.inc(direction, "started") }
func (m *Metrics) completed(direction string) { m.inc(direction, "completed") }
func (m *Metrics) aborted(direction string)   { m.inc(direction, "aborted") }

func (m *Metrics) inc(direction, outcome string) {
	if m == nil {
		return
	}
	m.transfers.WithLabelValues(direction, outcome).Inc()
}
