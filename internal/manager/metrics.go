package manager

import "github.com/prometheus/client_golang/prometheus"

var (
	upscalesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upscaled",
			Subsystem: "manager",
			Name:      "upscales_total",
			Help:      "Upscale requests by outcome",
		},
		[]string{"result"},
	)

	upscaleDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "upscaled",
			Subsystem: "manager",
			Name:      "upscale_duration_seconds",
			Help:      "Time spent inside the upscaler",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"backend"},
	)

	inflightUpscales = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "upscaled",
			Subsystem: "manager",
			Name:      "inflight_upscales",
			Help:      "Upscales currently running",
		},
	)

	queueLength = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "upscaled",
			Subsystem: "manager",
			Name:      "queue_length",
			Help:      "Requests waiting for an upscaler slot",
		},
	)

	cleanupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "upscaled",
			Subsystem: "manager",
			Name:      "cleanup_files_total",
			Help:      "Scratch files removed, by reason",
		},
		[]string{"reason"},
	)
)

func init() {
	prometheus.MustRegister(upscalesTotal, upscaleDuration, inflightUpscales, queueLength, cleanupsTotal)
}
