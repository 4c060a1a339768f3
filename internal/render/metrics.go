package render

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	raysTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "narval",
		Subsystem: "render",
		Name:      "primary_rays_total",
		Help:      "Primary rays traced.",
	})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "narval",
		Subsystem: "render",
		Name:      "events_total",
		Help:      "Estimator events by kind.",
	}, []string{"event"})

	tileSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "narval",
		Subsystem: "render",
		Name:      "tile_seconds",
		Help:      "Wall time per rendered tile.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	})

	renderSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "narval",
		Subsystem: "render",
		Name:      "seconds",
		Help:      "Wall time per render.",
		Buckets:   prometheus.ExponentialBuckets(0.01, 4, 10),
	})
)
