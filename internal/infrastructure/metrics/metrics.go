package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Request outcome labels
const (
	OutcomeForwarded  = "forwarded"
	OutcomeTimeout    = "timeout"
	OutcomeSendFailed = "send_failed"
	OutcomeShutdown   = "shutdown"
	OutcomeRejected   = "rejected"
	OutcomeClientGone = "client_gone"
)

var (
	// RequestsTotal counts forwarded requests by outcome
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bridgeport_requests_total",
		Help: "Forwarded HTTP requests by outcome.",
	}, []string{"outcome"})

	// RequestDuration observes end-to-end latency of forwarded requests
	RequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "bridgeport_request_duration_seconds",
		Help:    "End-to-end duration of forwarded requests.",
		Buckets: prometheus.DefBuckets,
	})

	registerOnce sync.Once
)

// RegisterBridgeCollectors wires the gauges that read live bridge state:
// the number of pending requests and the running stale-response count.
func RegisterBridgeCollectors(pending func() int, stale func() uint64) {
	registerOnce.Do(func() {
		prometheus.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "bridgeport_pending_requests",
			Help: "Requests currently awaiting a reply from the peer.",
		}, func() float64 { return float64(pending()) }))
		prometheus.MustRegister(prometheus.NewCounterFunc(prometheus.CounterOpts{
			Name: "bridgeport_stale_responses_total",
			Help: "Replies that arrived after their request was given up on.",
		}, func() float64 { return float64(stale()) }))
	})
}

// NewServer returns the localhost-only metrics listener
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
