package server

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ginilab/go-desforecaster/dataset"
)

// Forecast run outcomes
const (
	outcomeOK      = "ok"
	outcomeInvalid = "invalid"
	outcomeError   = "error"
	outcomePanic   = "panic"
)

// Metrics holds the prometheus collectors of the dashboard
type Metrics struct {
	ForecastRuns     *prometheus.CounterVec
	ForecastDuration prometheus.Histogram
	HTTPRequests     *prometheus.CounterVec
}

// NewMetrics registers the dashboard collectors, including the cache counters, with reg
func NewMetrics(reg prometheus.Registerer, cache *dataset.Cache) *Metrics {
	m := &Metrics{
		ForecastRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gini",
			Name:      "forecast_runs_total",
			Help:      "Number of forecast computations by outcome.",
		}, []string{"outcome"}),
		ForecastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gini",
			Name:      "forecast_duration_seconds",
			Help:      "Time spent loading the series and computing a forecast.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gini",
			Name:      "http_requests_total",
			Help:      "Number of HTTP requests by route pattern and status code.",
		}, []string{"route", "code"}),
	}
	reg.MustRegister(m.ForecastRuns, m.ForecastDuration, m.HTTPRequests)

	if cache != nil {
		reg.MustRegister(
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: "gini",
				Name:      "dataset_cache_hits_total",
				Help:      "Number of dataset reads served from the cache.",
			}, func() float64 { return float64(cache.Stats().Hits) }),
			prometheus.NewCounterFunc(prometheus.CounterOpts{
				Namespace: "gini",
				Name:      "dataset_cache_misses_total",
				Help:      "Number of dataset reads that loaded the workbook.",
			}, func() float64 { return float64(cache.Stats().Misses) }),
		)
	}
	return m
}

func (m *Metrics) observeForecast(start time.Time, err error) {
	m.ForecastDuration.Observe(time.Since(start).Seconds())
	m.ForecastRuns.WithLabelValues(outcome(err)).Inc()
}

func outcome(err error) string {
	if err == nil {
		return outcomeOK
	}
	var compErr *ComputationError
	if errors.As(err, &compErr) {
		return outcomePanic
	}
	if toAPIError(err).StatusCode < 500 {
		return outcomeInvalid
	}
	return outcomeError
}
