package api

import (
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// MetricPrefix is shared by every application metric
const MetricPrefix = "retroachievements_"

// FilteredGatherer wraps a gatherer to only return metrics matching a prefix
type FilteredGatherer struct {
	gatherer prometheus.Gatherer
	prefix   string
}

func NewFilteredGatherer(gatherer prometheus.Gatherer, prefix string) *FilteredGatherer {
	return &FilteredGatherer{
		gatherer: gatherer,
		prefix:   prefix,
	}
}

func (fg *FilteredGatherer) Gather() ([]*dto.MetricFamily, error) {
	all, err := fg.gatherer.Gather()
	if err != nil {
		return nil, err
	}

	filtered := make([]*dto.MetricFamily, 0, len(all))
	for _, mf := range all {
		if strings.HasPrefix(mf.GetName(), fg.prefix) {
			filtered = append(filtered, mf)
		}
	}
	return filtered, nil
}

// ExcludedPrefixGatherer wraps a gatherer to exclude metrics matching certain prefixes
type ExcludedPrefixGatherer struct {
	gatherer prometheus.Gatherer
	excluded []string
}

func NewExcludedPrefixGatherer(gatherer prometheus.Gatherer, excluded []string) *ExcludedPrefixGatherer {
	return &ExcludedPrefixGatherer{
		gatherer: gatherer,
		excluded: excluded,
	}
}

func (eg *ExcludedPrefixGatherer) Gather() ([]*dto.MetricFamily, error) {
	all, err := eg.gatherer.Gather()
	if err != nil {
		return nil, err
	}

	filtered := make([]*dto.MetricFamily, 0, len(all))
	for _, mf := range all {
		if mf.Name == nil || eg.isExcluded(mf.GetName()) {
			continue
		}
		filtered = append(filtered, mf)
	}
	return filtered, nil
}

func (eg *ExcludedPrefixGatherer) isExcluded(name string) bool {
	for _, prefix := range eg.excluded {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

// SystemMetricsHandler serves everything except application metrics (go_*, process_*, promhttp_*)
func SystemMetricsHandler(gatherer prometheus.Gatherer) http.Handler {
	excluded := NewExcludedPrefixGatherer(gatherer, []string{MetricPrefix})
	return promhttp.HandlerFor(excluded, promhttp.HandlerOpts{})
}

// RetroAchievementsHandler serves only application metrics
func RetroAchievementsHandler(gatherer prometheus.Gatherer) http.Handler {
	filtered := NewFilteredGatherer(gatherer, MetricPrefix)
	return promhttp.HandlerFor(filtered, promhttp.HandlerOpts{})
}
