package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/2beens/healthzones/internal/middleware"
	"github.com/2beens/healthzones/internal/telemetry/metrics"

	"github.com/go-redis/redis_rate/v9"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

// fakeLimiter allows the first `allow` calls per key.
type fakeLimiter struct {
	allow int
	calls map[string]int
	err   error
}

func (f *fakeLimiter) Allow(_ context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls[key]++
	if f.calls[key] > f.allow {
		return &redis_rate.Result{Limit: limit, Allowed: 0, RetryAfter: 20 * time.Second}, nil
	}
	return &redis_rate.Result{Limit: limit, Allowed: 1, Remaining: f.allow - f.calls[key]}, nil
}

func TestRateLimit(t *testing.T) {
	limiter := &fakeLimiter{allow: 2, calls: map[string]int{}}
	metricsManager := metrics.NewTestManager()
	handler := middleware.RateLimit(limiter, "sync", 2, metricsManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for range 3 {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/sync", nil))
		codes = append(codes, rr.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, 3, limiter.calls["sync"])
	assert.Equal(t, float64(1), testutil.ToFloat64(metricsManager.CounterRateLimitedRequests))
}

func TestRateLimit_LimiterError(t *testing.T) {
	limiter := &fakeLimiter{err: errors.New("redis down")}
	handler := middleware.RateLimit(limiter, "login", 15, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("must not be called")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/a/login", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
