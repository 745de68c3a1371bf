package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// GatewayMetrics tracks the outbound request queue.
type GatewayMetrics struct {
	dispatches *prometheus.CounterVec
	queueDepth prometheus.Gauge
	queueWait  prometheus.Histogram
}

var (
	gatewayOnce sync.Once
	gateway     *GatewayMetrics
)

// Gateway returns the process-wide gateway metrics.
func Gateway() *GatewayMetrics {
	gatewayOnce.Do(func() {
		gateway = &GatewayMetrics{
			dispatches: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: "fieldbill",
				Subsystem: "gateway",
				Name:      "dispatches_total",
				Help:      "Outbound API dispatches by outcome.",
			}, []string{"outcome"}),
			queueDepth: promauto.NewGauge(prometheus.GaugeOpts{
				Namespace: "fieldbill",
				Subsystem: "gateway",
				Name:      "queue_depth",
				Help:      "Requests currently waiting in the outbound queue.",
			}),
			queueWait: promauto.NewHistogram(prometheus.HistogramOpts{
				Namespace: "fieldbill",
				Subsystem: "gateway",
				Name:      "queue_wait_seconds",
				Help:      "Time spent between enqueue and dispatch.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			}),
		}
	})
	return gateway
}

func (m *GatewayMetrics) IncDispatch(outcome string) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(outcome).Inc()
}

func (m *GatewayMetrics) SetQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.queueDepth.Set(float64(depth))
}

func (m *GatewayMetrics) ObserveQueueWait(d time.Duration) {
	if m == nil {
		return
	}
	m.queueWait.Observe(d.Seconds())
}
