package volume

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	buildSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "narval",
		Subsystem: "index",
		Name:      "build_seconds",
		Help:      "Time spent building a spatial index.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
	}, []string{"kind"})

	nodeGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "narval",
		Subsystem: "index",
		Name:      "nodes",
		Help:      "Node count of the most recently built index.",
	}, []string{"kind"})

	occupiedGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "narval",
		Subsystem: "index",
		Name:      "occupied_cells",
		Help:      "Occupied cells covered by the most recently built index.",
	}, []string{"kind"})

	buildErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "narval",
		Subsystem: "index",
		Name:      "build_errors_total",
		Help:      "Rejected index configurations.",
	}, []string{"kind"})
)

func observeBuild(st Stats, elapsed time.Duration) {
	k := string(st.Kind)
	buildSeconds.WithLabelValues(k).Observe(elapsed.Seconds())
	nodeGauge.WithLabelValues(k).Set(float64(st.Nodes))
	occupiedGauge.WithLabelValues(k).Set(float64(st.Occupied))
}
