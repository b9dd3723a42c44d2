package entity

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/klabast/wb-services/awb-kalender/internal/schedule"
)

var (
	imminentGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "awb_collection_imminent",
		Help: "1 while the next collection of a category is within the lead window.",
	}, []string{"category"})
	nextCollectionGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "awb_next_collection_timestamp_seconds",
		Help: "Unix time of the next collection per category (0 if unknown).",
	}, []string{"category"})
)

func recordSensor(c schedule.Category, imminent bool, next time.Time, hasNext bool) {
	v := 0.0
	if imminent {
		v = 1
	}
	imminentGauge.WithLabelValues(string(c)).Set(v)

	ts := 0.0
	if hasNext {
		ts = float64(next.Unix())
	}
	nextCollectionGauge.WithLabelValues(string(c)).Set(ts)
}
