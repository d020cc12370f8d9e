package http

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yanqian/findmy/internal/infra/config"
	"github.com/yanqian/findmy/pkg/metrics"
)

const retryBodyLimit = 1 << 20 // 1 MiB

var errBodyTooLarge = errors.New("request body exceeds retry limit")

// retryPolicy replays idempotent requests whose handler answered with a
// transient server error. Responses are buffered so only the last attempt
// reaches the client.
type retryPolicy struct {
	maxAttempts int
	backoff     time.Duration
	exclude     []string
	logger      *slog.Logger
}

func withRetry(handler http.Handler, cfg config.RetryConfig, logger *slog.Logger) http.Handler {
	if !cfg.Enabled || cfg.MaxAttempts <= 1 {
		return handler
	}
	policy := &retryPolicy{
		maxAttempts: cfg.MaxAttempts,
		backoff:     cfg.BaseBackoff,
		exclude:     cfg.Exclude,
		logger:      logger,
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !policy.applies(r) {
			handler.ServeHTTP(w, r)
			return
		}
		policy.serve(handler, w, r)
	})
}

// applies reports whether r may be replayed. Exclusions match path prefixes.
func (p *retryPolicy) applies(r *http.Request) bool {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
	default:
		return false
	}
	for _, prefix := range p.exclude {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return false
		}
	}
	return true
}

func (p *retryPolicy) serve(handler http.Handler, w http.ResponseWriter, r *http.Request) {
	body, err := readRequestBody(r)
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, errBodyTooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeEnvelope(w, status, "invalid_request", err.Error())
		return
	}

	for attempt := 1; ; attempt++ {
		recorder := newRetryResponseRecorder()
		replay := r.Clone(r.Context())
		replay.Body = io.NopCloser(bytes.NewReader(body))
		replay.ContentLength = int64(len(body))

		handler.ServeHTTP(recorder, replay)
		if !transientStatus(recorder.status) || attempt == p.maxAttempts {
			recorder.flushTo(w)
			return
		}

		metrics.HTTPRetriesTotal.WithLabelValues(r.Method, strconv.Itoa(recorder.status)).Inc()
		p.logger.Warn("transient failure, retrying request", "method", r.Method, "path", r.URL.Path, "status", recorder.status, "attempt", attempt)
		if !p.wait(r, attempt) {
			recorder.flushTo(w)
			return
		}
	}
}

// wait sleeps base*2^(attempt-1) and gives up early when the client goes away.
func (p *retryPolicy) wait(r *http.Request, attempt int) bool {
	delay := p.backoff * time.Duration(1<<(attempt-1))
	if delay <= 0 {
		return r.Context().Err() == nil
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-r.Context().Done():
		return false
	}
}

func transientStatus(status int) bool {
	switch status {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func readRequestBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()
	data, err := io.ReadAll(io.LimitReader(r.Body, retryBodyLimit+1))
	if err != nil {
		return nil, err
	}
	if len(data) > retryBodyLimit {
		return nil, errBodyTooLarge
	}
	return data, nil
}

type retryResponseRecorder struct {
	header http.Header
	body   bytes.Buffer
	status int
	wrote  bool
}

func newRetryResponseRecorder() *retryResponseRecorder {
	return &retryResponseRecorder{header: make(http.Header), status: http.StatusOK}
}

func (r *retryResponseRecorder) Header() http.Header { return r.header }

func (r *retryResponseRecorder) WriteHeader(status int) {
	if r.wrote {
		return
	}
	r.status = status
	r.wrote = true
}

func (r *retryResponseRecorder) Write(b []byte) (int, error) {
	r.wrote = true
	return r.body.Write(b)
}

func (r *retryResponseRecorder) Flush() {}

func (r *retryResponseRecorder) flushTo(w http.ResponseWriter) {
	dst := w.Header()
	for k, values := range r.header {
		dst[k] = append([]string(nil), values...)
	}
	w.WriteHeader(r.status)
	if r.body.Len() > 0 {
		_, _ = w.Write(r.body.Bytes())
	}
}
