package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	perr "devquest/internal/platform/errors"
	"devquest/internal/platform/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc, tokens string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Options{BaseURL: srv.URL, TokensCSV: tokens, MaxRetries: 2, RetryBase: time.Millisecond})
	require.NoError(t, err)
	testkit.Swap(t, &c.sleep, func(time.Duration) {})
	return c
}

func TestUserByLogin(t *testing.T) {
	var auth string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/octocat", r.URL.Path)
		assert.Equal(t, defaultUA, r.Header.Get("User-Agent"))
		auth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"id":583231,"login":"octocat","type":"User"}`))
	}, " tok1 ")

	u, err := c.UserByLogin(context.Background(), "octocat")
	require.NoError(t, err)
	assert.Equal(t, User{ID: 583231, Login: "octocat", Type: "User"}, u)
	assert.Equal(t, "token tok1", auth)
}

func TestUserByLogin_Errors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/ghost":
			w.WriteHeader(http.StatusNotFound)
		case "/users/teapot":
			w.WriteHeader(http.StatusTeapot)
		default:
			_, _ = w.Write([]byte(`{"login":"noid"}`))
		}
	}, "")
	ctx := context.Background()

	_, err := c.UserByLogin(ctx, "ghost")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))

	_, err = c.UserByLogin(ctx, "noid")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))

	_, err = c.UserByLogin(ctx, "teapot")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeUnknown))

	_, err = c.UserByLogin(ctx, "  ")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
}

func TestUserByLogin_RetriesTransient(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"id":1,"login":"a"}`))
	}, "")

	u, err := c.UserByLogin(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, int64(1), u.ID)
	assert.Equal(t, int32(2), calls.Load())
}

func TestUserByLogin_RateLimitedGivesUp(t *testing.T) {
	var calls atomic.Int32
	var slept []time.Duration
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
	}, "")
	testkit.Swap(t, &c.sleep, func(d time.Duration) { slept = append(slept, d) })

	_, err := c.UserByLogin(context.Background(), "a")
	assert.True(t, perr.IsCode(err, perr.ErrorCodeTooManyRequests))
	assert.Equal(t, int32(3), calls.Load(), "first try plus MaxRetries")
	assert.Equal(t, []time.Duration{time.Second, time.Second}, slept)
}

func TestTokenRing(t *testing.T) {
	r := newTokenRing("a, b,,c")
	got := []string{r.next(), r.next(), r.next(), r.next()}
	assert.Equal(t, []string{"b", "c", "a", "b"}, got)
	assert.Empty(t, newTokenRing("").next())
}

func TestComputeWait(t *testing.T) {
	now := time.Unix(1000, 0)
	assert.Equal(t, 3*time.Second, computeWait(0, time.Time{}, 3, now))
	assert.Equal(t, 5*time.Second, computeWait(0, now.Add(5*time.Second), 0, now))
	assert.Zero(t, computeWait(10, now.Add(5*time.Second), 0, now))
}

func TestResolver_Caches(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		_, _ = w.Write([]byte(`{"id":42,"login":"OctoCat"}`))
	}, "")
	r := NewResolver(c)

	for _, l := range []string{"OctoCat", "octocat"} {
		id, err := r.ActorID(context.Background(), l)
		require.NoError(t, err)
		assert.Equal(t, int64(42), id)
	}
	assert.Equal(t, int32(1), calls.Load())
}
