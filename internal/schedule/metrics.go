package schedule

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "awb_schedule_fetches_total",
		Help: "Schedule fetch attempts by result.",
	}, []string{"result"})
	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "awb_schedule_fetch_duration_seconds",
		Help:    "Duration of schedule fetches.",
		Buckets: prometheus.DefBuckets,
	})
	eventsCached = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "awb_schedule_events_cached",
		Help: "Number of collection dates currently cached.",
	})
	lastFetchTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "awb_schedule_last_fetch_timestamp_seconds",
		Help: "Unix time of the last successful fetch.",
	})
)
