// Package github resolves GH Archive actors against the GitHub REST API
package github

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	perr "devquest/internal/platform/errors"
	"devquest/internal/platform/logger"

	"github.com/cenkalti/backoff/v4"
	gh "github.com/google/go-github/v62/github"
)

const (
	defaultUA        = "devquest-replay"
	defaultTimeout   = 10 * time.Second
	defaultMaxRetry  = 5
	defaultRetryBase = 500 * time.Millisecond
	maxBackoff       = 30 * time.Second
)

// Options configures the Client
type Options struct {
	// BaseURL overrides https://api.github.com/, mostly for tests and GHES
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// Comma separated tokens, empty means tokenless (60 requests an hour)
	TokensCSV string

	MaxRetries int
	RetryBase  time.Duration
}

// Client wraps a go-github client with token rotation and retries
type Client struct {
	gh    *gh.Client
	ring  *tokenRing
	opts  Options
	log   *logger.Logger
	sleep func(time.Duration)
}

// NewClient builds a Client, filling defaults
func NewClient(o Options) (*Client, error) {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}

	ring := newTokenRing(o.TokensCSV)
	hc := &http.Client{Timeout: o.Timeout, Transport: &tokenTransport{ring: ring, base: http.DefaultTransport}}
	client := gh.NewClient(hc)
	client.UserAgent = o.UserAgent
	if o.BaseURL != "" {
		u, err := url.Parse(strings.TrimRight(o.BaseURL, "/") + "/")
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "github: base url")
		}
		client.BaseURL = u
	}

	return &Client{gh: client, ring: ring, opts: o, log: logger.Named("github"), sleep: time.Sleep}, nil
}

// call runs fn with retries on transport errors, 5xx gateways and rate limits
func (c *Client) call(ctx context.Context, what string, fn func() (*gh.Response, error)) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.opts.RetryBase
	b.MaxInterval = maxBackoff
	b.MaxElapsedTime = 0

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := time.Now()
		resp, err := fn()
		ev := c.log.Debug().Str("call", what).Int("attempt", attempt).Dur("latency", time.Since(start))
		if resp != nil {
			ev = ev.Int("status", resp.StatusCode).Int("rate_remaining", resp.Rate.Remaining)
		}
		ev.Msg("github call")
		if err == nil {
			return nil
		}

		wait, retry, cerr := classify(ctx, what, err)
		if !retry || attempt >= c.opts.MaxRetries {
			return cerr
		}
		if wait <= 0 {
			wait = b.NextBackOff()
		}
		c.log.Warn().Err(err).Dur("retry_in", wait).Int("attempt", attempt).Msg("github call retrying")
		c.sleep(wait)
	}
}

// classify maps a go-github error to a coded error, a wait hint and whether to retry
func classify(ctx context.Context, what string, err error) (time.Duration, bool, error) {
	if ctx.Err() != nil {
		return 0, false, ctx.Err()
	}

	var rl *gh.RateLimitError
	if errors.As(err, &rl) {
		return time.Until(rl.Rate.Reset.Time), true, perr.Wrapf(err, perr.ErrorCodeTooManyRequests, "github: rate limited")
	}
	var abuse *gh.AbuseRateLimitError
	if errors.As(err, &abuse) {
		return abuse.GetRetryAfter(), true, perr.Wrapf(err, perr.ErrorCodeTooManyRequests, "github: secondary rate limit")
	}

	var er *gh.ErrorResponse
	if !errors.As(err, &er) || er.Response == nil {
		return 0, true, perr.Wrapf(err, perr.ErrorCodeUnavailable, "github: %s", what)
	}
	switch code := er.Response.StatusCode; code {
	case http.StatusNotFound:
		return 0, false, perr.Newf(perr.ErrorCodeNotFound, "github: %s not found", what)
	case http.StatusTooManyRequests, http.StatusForbidden:
		rem, reset, after := parseRateHeaders(er.Response.Header)
		return computeWait(rem, reset, after, time.Now()), true, perr.Newf(perr.ErrorCodeTooManyRequests, "github: rate limited")
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return 0, true, perr.Newf(perr.ErrorCodeUnavailable, "github: transient server error %d", code)
	default:
		return 0, false, perr.Newf(perr.ErrorCodeUnknown, "github: unexpected status %d: %s", code, er.Message)
	}
}

// tokenRing hands out tokens round robin
type tokenRing struct {
	tokens []string
	cur    atomic.Int32
}

func newTokenRing(csv string) *tokenRing {
	r := &tokenRing{}
	for t := range strings.SplitSeq(csv, ",") {
		if t = strings.TrimSpace(t); t != "" {
			r.tokens = append(r.tokens, t)
		}
	}
	return r
}

func (r *tokenRing) next() string {
	n := int(r.cur.Add(1))
	if len(r.tokens) == 0 {
		return ""
	}
	return r.tokens[n%len(r.tokens)]
}

// tokenTransport sets the Authorization header from the ring on each request
type tokenTransport struct {
	ring *tokenRing
	base http.RoundTripper
}

func (t *tokenTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok := t.ring.next()
	if tok == "" {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("Authorization", "token "+tok)
	return t.base.RoundTrip(r)
}
