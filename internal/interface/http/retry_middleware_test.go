package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/findmy/internal/domain/recommendation"
	"github.com/yanqian/findmy/internal/infra/config"
	apperrors "github.com/yanqian/findmy/pkg/errors"
)

func TestWithRetry_ReplaysIdempotentRequests(t *testing.T) {
	var calls atomic.Int32
	flaky := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if calls.Add(1) < 3 {
			w.Header().Set("X-Attempt", "failed")
			writeEnvelope(w, http.StatusServiceUnavailable, "upstream_unavailable", "store down")
			return
		}
		w.Header().Set("X-Echo", string(body))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":7}`))
	})
	handler := withRetry(flaky, retryTestConfig(), newTestLogger())

	for _, method := range []string{http.MethodGet, http.MethodPut} {
		calls.Store(0)
		req := httptest.NewRequest(method, "/restaurants/7", strings.NewReader(`{"capacity":55}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, method)
		require.Equal(t, `{"id":7}`, rec.Body.String(), method)
		require.Equal(t, `{"capacity":55}`, rec.Header().Get("X-Echo"), method)
		require.Empty(t, rec.Header().Get("X-Attempt"), method)
		require.Equal(t, int32(3), calls.Load(), method)
	}
}

func TestWithRetry_SkipsPostAndExcludedPaths(t *testing.T) {
	var calls atomic.Int32
	failing := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeEnvelope(w, http.StatusServiceUnavailable, "upstream_unavailable", "places provider unavailable")
	})
	handler := withRetry(failing, retryTestConfig(), newTestLogger())

	cases := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/restaurants/"},
		{http.MethodPost, "/get-recommendations/"},
		{http.MethodGet, "/metrics"},
		{http.MethodGet, "/debug/pprof/heap"},
	}
	for _, tc := range cases {
		calls.Store(0)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		require.Equal(t, http.StatusServiceUnavailable, rec.Code, tc.path)
		require.Equal(t, int32(1), calls.Load(), tc.path)
	}
}

func TestWithRetry_GivesUpAfterMaxAttempts(t *testing.T) {
	var calls atomic.Int32
	failing := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeEnvelope(w, http.StatusInternalServerError, "internal_error", "something went wrong")
	})
	handler := withRetry(failing, retryTestConfig(), newTestLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/restaurants/", nil))
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "internal_error", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
	require.Equal(t, int32(3), calls.Load())
}

func TestWithRetry_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	missing := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeEnvelope(w, http.StatusNotFound, "not_found", "restaurant not found")
	})
	handler := withRetry(missing, retryTestConfig(), newTestLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/restaurants/9", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, int32(1), calls.Load())
}

func TestWithRetry_StopsWhenClientGoesAway(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	failing := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		cancel()
		writeEnvelope(w, http.StatusServiceUnavailable, "upstream_unavailable", "store down")
	})
	cfg := retryTestConfig()
	cfg.BaseBackoff = time.Minute
	handler := withRetry(failing, cfg, newTestLogger())

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/restaurants/", nil).WithContext(ctx))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, int32(1), calls.Load())
}

func TestWithRetry_DisabledPassesThrough(t *testing.T) {
	var calls atomic.Int32
	counting := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	cfg := retryTestConfig()
	cfg.Enabled = false

	rec := httptest.NewRecorder()
	withRetry(counting, cfg, newTestLogger()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/restaurants/", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Equal(t, int32(1), calls.Load())
}

func TestRouter_RecommendationsAreNotReplayed(t *testing.T) {
	var calls atomic.Int32
	svc := &stubRecommender{
		recommendFn: func(context.Context, recommendation.Request) (recommendation.Result, error) {
			calls.Add(1)
			return recommendation.Result{}, apperrors.Wrap(apperrors.CodeUpstreamUnavailable, "places provider unavailable", recommendation.ErrUpstreamUnavailable)
		},
	}
	env := newRouterUnderTest(t, svc, func(cfg *config.Config) {
		cfg.HTTP.Retry = retryTestConfig()
	})

	recorder := performRequest(http.MethodPost, "/get-recommendations/", `{"prompt":"sushi à Rabat"}`, "", env.server)
	require.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	require.Equal(t, int32(1), calls.Load())

	recorder = performRequest(http.MethodGet, "/healthz", "", "", env.server)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}

func retryTestConfig() config.RetryConfig {
	return config.RetryConfig{
		Enabled:     true,
		MaxAttempts: 3,
		BaseBackoff: time.Millisecond,
		Exclude:     []string{"/metrics", "/debug/pprof"},
	}
}
