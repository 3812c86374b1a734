// Package metrics exposes prometheus counters for the pipeline and http surface
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "devquest"

// Outcomes recorded by Pipeline.Event
const (
	OutcomeProcessed = "processed"
	OutcomeDuplicate = "duplicate"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
)

// Registry owns every collector the service exports
type Registry struct {
	reg *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	events      *prometheus.CounterVec
	xpAwarded   *prometheus.CounterVec
	misses      *prometheus.CounterVec
	txRetries   prometheus.Counter
	levelUps    prometheus.Counter
	achievement *prometheus.CounterVec
}

// New builds a registry with all collectors registered
func New() *Registry {
	r := &Registry{reg: prometheus.NewRegistry()}

	r.requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	r.requestTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests",
	}, []string{"method", "route", "status"})

	r.events = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "intake",
		Name:      "events_total",
		Help:      "Provider events seen by the intake gate by outcome and activity type",
	}, []string{"outcome", "activity_type"})

	r.xpAwarded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "progress",
		Name:      "xp_awarded_total",
		Help:      "XP granted by activity type",
	}, []string{"activity_type"})

	r.misses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "xp",
		Name:      "calculator_misses_total",
		Help:      "Activities that had no registered calculator",
	}, []string{"activity_type"})

	r.txRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "progress",
		Name:      "tx_retries_total",
		Help:      "Processor transactions retried after a conflict",
	})

	r.levelUps = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "progress",
		Name:      "level_ups_total",
		Help:      "Processed activities that raised a user level",
	})

	r.achievement = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "progress",
		Name:      "achievements_total",
		Help:      "Achievements unlocked by code",
	}, []string{"code"})

	r.reg.MustRegister(
		r.requestDuration, r.requestTotal,
		r.events, r.xpAwarded, r.misses,
		r.txRetries, r.levelUps, r.achievement,
	)
	return r
}

// Gatherer exposes the underlying registry for tests and custom exporters
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// Handler serves the text exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Event counts one intake outcome
func (r *Registry) Event(outcome, activityType string) {
	if r == nil {
		return
	}
	if activityType == "" {
		activityType = "unknown"
	}
	r.events.WithLabelValues(outcome, activityType).Inc()
}

// XP adds granted xp for an activity type
func (r *Registry) XP(activityType string, xp int64) {
	if r == nil || xp <= 0 {
		return
	}
	r.xpAwarded.WithLabelValues(activityType).Add(float64(xp))
}

// Miss counts an activity type without a calculator
func (r *Registry) Miss(activityType string) {
	if r == nil {
		return
	}
	r.misses.WithLabelValues(activityType).Inc()
}

// TxRetry counts one retried processor transaction
func (r *Registry) TxRetry() {
	if r == nil {
		return
	}
	r.txRetries.Inc()
}

// LevelUp counts a level increase
func (r *Registry) LevelUp() {
	if r == nil {
		return
	}
	r.levelUps.Inc()
}

// Achievement counts an unlocked achievement
func (r *Registry) Achievement(code string) {
	if r == nil {
		return
	}
	r.achievement.WithLabelValues(code).Inc()
}

// Middleware records request counts and latency keyed by the chi route pattern
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rw, req)

		route := "unmatched"
		if rc := chi.RouteContext(req.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		status := strconv.Itoa(rw.status)
		r.requestTotal.WithLabelValues(req.Method, route, status).Inc()
		r.requestDuration.WithLabelValues(req.Method, route, status).Observe(time.Since(start).Seconds())
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (w *responseWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
