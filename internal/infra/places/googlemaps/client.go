package googlemaps

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/yanqian/findmy/internal/domain/recommendation"
	"github.com/yanqian/findmy/pkg/metrics"
)

const (
	defaultBaseURL  = "https://maps.googleapis.com/maps/api/place"
	defaultLanguage = "fr"
	defaultTimeout  = 10 * time.Second
	breakerPrefix   = "google-places"

	endpointTextSearch = "textsearch"
	endpointDetails    = "details"
)

// Config configures the Places client.
type Config struct {
	APIKey   string
	BaseURL  string
	Language string
	Timeout  time.Duration
	Breaker  BreakerConfig
}

// BreakerConfig tunes the circuit breaker. A disabled breaker passes every call through.
type BreakerConfig struct {
	Enabled          bool
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// Client calls the Google Places web service.
type Client struct {
	cfg        Config
	baseURL    string
	httpClient *http.Client
	breakers   map[string]*gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
}

// NewClient builds a Places client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("google maps api key cannot be empty")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if cfg.Language == "" {
		cfg.Language = defaultLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	c := &Client{
		cfg:        cfg,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With("component", "googlemaps.client"),
	}
	if cfg.Breaker.Enabled {
		c.breakers = map[string]*gobreaker.CircuitBreaker[[]byte]{
			endpointTextSearch: c.newBreaker(endpointTextSearch),
			endpointDetails:    c.newBreaker(endpointDetails),
		}
	}
	return c, nil
}

// newBreaker guards one endpoint. Calls abandoned by the caller do not count
// against the upstream.
func (c *Client) newBreaker(endpoint string) *gobreaker.CircuitBreaker[[]byte] {
	threshold := c.cfg.Breaker.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerPrefix + "-" + endpoint,
		MaxRequests: c.cfg.Breaker.MaxRequests,
		Interval:    c.cfg.Breaker.Interval,
		Timeout:     c.cfg.Breaker.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
			metrics.BreakerStateChangesTotal.WithLabelValues(name, to.String()).Inc()
		},
	})
}

// PhotoBaseURL is the photo endpoint matching the configured base URL.
func (c *Client) PhotoBaseURL() string {
	return c.baseURL + "/photo"
}

// TextSearch runs a text search query.
func (c *Client) TextSearch(ctx context.Context, query string) (recommendation.SearchPage, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("language", c.cfg.Language)

	var page recommendation.SearchPage
	if err := c.getJSON(ctx, endpointTextSearch, params, &page); err != nil {
		return recommendation.SearchPage{}, err
	}
	metrics.PlacesCallsTotal.WithLabelValues(endpointTextSearch, page.Status).Inc()
	return page, nil
}

// Details fetches the requested fields of one place.
func (c *Client) Details(ctx context.Context, placeID string, fields []string) (recommendation.DetailPage, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	if len(fields) > 0 {
		params.Set("fields", strings.Join(fields, ","))
	}

	var page recommendation.DetailPage
	if err := c.getJSON(ctx, endpointDetails, params, &page); err != nil {
		return recommendation.DetailPage{}, err
	}
	metrics.PlacesCallsTotal.WithLabelValues(endpointDetails, page.Status).Inc()
	return page, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	body, err := c.execute(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		metrics.PlacesCallsTotal.WithLabelValues(endpoint, "decode_error").Inc()
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

func (c *Client) execute(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	breaker, ok := c.breakers[endpoint]
	if !ok {
		return c.fetch(ctx, endpoint, params)
	}
	body, err := breaker.Execute(func() ([]byte, error) {
		return c.fetch(ctx, endpoint, params)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.PlacesCallsTotal.WithLabelValues(endpoint, "breaker_open").Inc()
		return nil, fmt.Errorf("%w: %s", recommendation.ErrUpstreamUnavailable, err)
	}
	return body, err
}

func (c *Client) fetch(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	params.Set("key", c.cfg.APIKey)
	target := fmt.Sprintf("%s/%s/json?%s", c.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", endpoint, err)
	}
	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			metrics.PlacesCallsTotal.WithLabelValues(endpoint, "canceled").Inc()
			c.logger.Warn("places request abandoned", "endpoint", endpoint, "error", ctxErr)
			return nil, fmt.Errorf("%w: %s request: %w", recommendation.ErrUpstreamUnavailable, endpoint, ctxErr)
		}
		metrics.PlacesCallsTotal.WithLabelValues(endpoint, "transport_error").Inc()
		c.logger.Error("places request failed", "endpoint", endpoint, "error", redact(err, c.cfg.APIKey))
		return nil, fmt.Errorf("%w: %s request failed: %s", recommendation.ErrUpstreamUnavailable, endpoint, redact(err, c.cfg.APIKey))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		metrics.PlacesCallsTotal.WithLabelValues(endpoint, fmt.Sprintf("http_%d", resp.StatusCode)).Inc()
		c.logger.Error("places request rejected", "endpoint", endpoint, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: %s status=%d body=%s", recommendation.ErrUpstreamUnavailable, endpoint, resp.StatusCode, string(payload))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %s", recommendation.ErrUpstreamUnavailable, endpoint, redact(err, c.cfg.APIKey))
	}
	c.logger.Debug("places request done", "endpoint", endpoint, "latency", time.Since(started))
	return body, nil
}

// redact strips the API key from errors that embed the request URL.
func redact(err error, key string) string {
	if key == "" {
		return err.Error()
	}
	return strings.ReplaceAll(err.Error(), url.QueryEscape(key), "REDACTED")
}
