package metrics

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/s0up4200/bdshelf/governor"
)

// Settlement outcomes
const (
	OutcomeSuccess   = "success"
	OutcomeExhausted = "exhausted"
	OutcomeCanceled  = "canceled"
	OutcomeClosed    = "closed"
	OutcomeError     = "error"
)

var (
	// Governor metrics
	GovernorQueued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bdshelf_governor_queued_total",
			Help: "Total number of requests submitted to the governor",
		},
	)

	GovernorDispatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bdshelf_governor_dispatches_total",
			Help: "Total number of attempts sent to the provider",
		},
		[]string{"kind"}, // "first", "retry"
	)

	GovernorThrottles = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bdshelf_governor_throttles_total",
			Help: "Total number of attempts rejected by the provider with a throttle status",
		},
	)

	GovernorCooldownSeconds = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bdshelf_governor_cooldown_seconds",
			Help: "Length of the most recent global cooldown",
		},
	)

	GovernorSettled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bdshelf_governor_settled_total",
			Help: "Total number of settled requests by outcome",
		},
		[]string{"outcome"},
	)

	GovernorRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bdshelf_governor_request_duration_seconds",
			Help:    "Time from submission to settlement, including queueing and cooldowns",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	GovernorQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bdshelf_governor_queue_depth",
			Help: "Number of requests waiting for dispatch",
		},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bdshelf_http_requests_total",
			Help: "Total number of HTTP API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bdshelf_http_request_duration_seconds",
			Help:    "HTTP API request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30},
		},
		[]string{"method", "route"},
	)

	// Cover refresh metrics
	CoversChecked = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bdshelf_covers_checked_total",
			Help: "Total number of comics checked for a missing cover",
		},
	)

	CoversUpdated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bdshelf_covers_updated_total",
			Help: "Total number of covers found and saved",
		},
	)

	CoversFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bdshelf_covers_failed_total",
			Help: "Total number of cover lookups that failed",
		},
	)
)

// GovernorObserver records governor events. It satisfies governor.Observer.
type GovernorObserver struct {
	depth atomic.Pointer[func() int]
}

// NewGovernorObserver creates an observer writing to the package collectors
func NewGovernorObserver() *GovernorObserver {
	return &GovernorObserver{}
}

// TrackDepth makes the observer refresh the queue depth gauge from fn after
// every event. Typically fn is the governor's Pending method.
func (o *GovernorObserver) TrackDepth(fn func() int) {
	o.depth.Store(&fn)
}

func (o *GovernorObserver) refreshDepth() {
	if fn := o.depth.Load(); fn != nil {
		GovernorQueueDepth.Set(float64((*fn)()))
	}
}

// Queued implements governor.Observer
func (o *GovernorObserver) Queued(depth int) {
	GovernorQueued.Inc()
	GovernorQueueDepth.Set(float64(depth))
}

// Dispatched implements governor.Observer
func (o *GovernorObserver) Dispatched(attempt int) {
	kind := "first"
	if attempt > 1 {
		kind = "retry"
	}
	GovernorDispatches.WithLabelValues(kind).Inc()
	o.refreshDepth()
}

// Throttled implements governor.Observer
func (o *GovernorObserver) Throttled(_ int, cooldown time.Duration) {
	GovernorThrottles.Inc()
	GovernorCooldownSeconds.Set(cooldown.Seconds())
	o.refreshDepth()
}

// Settled implements governor.Observer
func (o *GovernorObserver) Settled(_ int, elapsed time.Duration, err error) {
	GovernorSettled.WithLabelValues(Outcome(err)).Inc()
	GovernorRequestDuration.Observe(elapsed.Seconds())
	o.refreshDepth()
}

// Outcome classifies a settlement error into a label value
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case governor.IsRetryExhausted(err):
		return OutcomeExhausted
	case errors.Is(err, governor.ErrClosed):
		return OutcomeClosed
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return OutcomeCanceled
	default:
		return OutcomeError
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCoverRefresh records the counts of one cover refresh pass
func RecordCoverRefresh(checked, updated, failed int) {
	CoversChecked.Add(float64(checked))
	CoversUpdated.Add(float64(updated))
	CoversFailed.Add(float64(failed))
}
