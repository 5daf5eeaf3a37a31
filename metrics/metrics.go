package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	DirectionDown = "down"
	DirectionUp   = "up"

	KindCurrent  = "current"
	KindAverage  = "average"
	KindSmoothed = "smoothed"
)

var (
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "speedmeter_build_info",
			Help: "Build information of speedmeter",
		},
		[]string{"version", "commit", "date"},
	)

	RateBytesPerSecond = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "speedmeter_rate_bytes_per_second",
		Help: "Throughput of the selected interfaces in bytes per second",
	}, []string{"direction", "kind"})

	SamplesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "speedmeter_samples_total",
		Help: "Total number of counter samples by estimator outcome",
	}, []string{"outcome"})

	CounterErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "speedmeter_counter_errors_total",
		Help: "Total number of failed counter reads",
	})

	UsageTodayBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "speedmeter_usage_today_bytes",
		Help: "Bytes transferred today",
	}, []string{"direction"})

	SelectedInterfaces = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "speedmeter_selected_interfaces",
		Help: "Number of interfaces included in the totals",
	})

	TickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "speedmeter_tick_duration_seconds",
		Help:    "Duration of a poll tick",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 100µs .. ~200ms
	})
)
