package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineCounters(t *testing.T) {
	r := New()
	r.Event(OutcomeProcessed, "code_push")
	r.Event(OutcomeProcessed, "code_push")
	r.Event(OutcomeDuplicate, "")
	r.XP("code_push", 15)
	r.XP("code_push", 0)
	r.Miss("tag_delete")
	r.TxRetry()
	r.LevelUp()
	r.Achievement("first_push")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.events.WithLabelValues(OutcomeProcessed, "code_push")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.events.WithLabelValues(OutcomeDuplicate, "unknown")))
	assert.Equal(t, 15.0, testutil.ToFloat64(r.xpAwarded.WithLabelValues("code_push")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.misses.WithLabelValues("tag_delete")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.txRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.levelUps))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.achievement.WithLabelValues("first_push")))
}

func TestNilRegistryIsInert(t *testing.T) {
	var r *Registry
	r.Event(OutcomeFailed, "x")
	r.XP("x", 3)
	r.Miss("x")
	r.TxRetry()
	r.LevelUp()
	r.Achievement("x")
}

func TestMiddlewareAndHandler(t *testing.T) {
	reg := New()

	mux := chi.NewRouter()
	mux.Use(reg.Middleware)
	mux.Get("/users/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	mux.Handle("/metrics", reg.Handler())

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/42", nil))
	require.Equal(t, http.StatusTeapot, rec.Code)

	got := testutil.ToFloat64(reg.requestTotal.WithLabelValues(http.MethodGet, "/users/{id}", "418"))
	assert.Equal(t, 1.0, got)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "devquest_http_requests_total"))
}
