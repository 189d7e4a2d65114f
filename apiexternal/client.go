package apiexternal

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Kellerman81/go_portfolio_admin/apperrors"
	"github.com/Kellerman81/go_portfolio_admin/logger"
	"github.com/Kellerman81/go_portfolio_admin/metrics"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ClientConfig holds configuration for the backend client.
type ClientConfig struct {
	Name    string
	BaseURL string
	Timeout time.Duration

	// RateLimit is the number of requests per second, 0 disables limiting.
	RateLimit      int
	RateLimitBurst int

	// CircuitBreakerThreshold consecutive failures open the breaker, 0 disables it.
	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration

	UserAgent        string
	DisableTLSVerify bool

	// ForwardCookies limits which browser cookies are sent along. Empty forwards all.
	ForwardCookies []string
}

// Client talks to the admin REST backend. It is safe for concurrent use.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	stats      *ClientStats
}

// ClientStats tracks request statistics.
type ClientStats struct {
	mu sync.RWMutex

	RequestsTotal     int64
	SuccessCount      int64
	FailureCount      int64
	AvgResponseTimeMs int64
	LastRequestAt     time.Time
	LastErrorAt       time.Time
	LastErrorMessage  string
	BreakerState      string

	totalResponseTimeMs int64
}

// StatusError is a non-2xx backend response.
type StatusError struct {
	Status int
	// Message is the detail reported by the backend, if any.
	Message string
	Body    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("HTTP %d", e.Status)
}

// Detail returns the human readable message sent by the backend.
func (e *StatusError) Detail() string {
	return e.Message
}

func (e *StatusError) StatusCode() int {
	return e.Status
}

// NewClient creates a client with pooled transport, rate limiting and circuit breaker.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Name == "" {
		cfg.Name = "backend"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	if cfg.DisableTLSVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	c := &Client{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout, Transport: transport},
		stats:      &ClientStats{BreakerState: gobreaker.StateClosed.String()},
	}

	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.RateLimitBurst, 1))
	}

	if cfg.CircuitBreakerThreshold > 0 {
		threshold := uint32(cfg.CircuitBreakerThreshold)
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        cfg.Name,
			MaxRequests: 1,
			Timeout:     cfg.CircuitBreakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: countsAsSuccess,
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.stats.mu.Lock()
				c.stats.BreakerState = to.String()
				c.stats.mu.Unlock()
				logger.Logtype(logger.StatusWarning, 0).
					Str(logger.StrClient, name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("Circuit breaker state changed")
			},
		})
	}

	logger.Logtype(logger.StatusInfo, 0).
		Str(logger.StrClient, cfg.Name).
		Str("base_url", cfg.BaseURL).
		Msg("Backend client initialized")

	return c
}

// countsAsSuccess keeps client errors (4xx) from opening the breaker.
func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var se *StatusError
	return errors.As(err, &se) && se.Status < 500
}

type cookieKey struct{}

// WithCookies attaches the browser's cookies to ctx so requests made with it
// carry the user's session to the backend.
func WithCookies(ctx context.Context, cookies []*http.Cookie) context.Context {
	return context.WithValue(ctx, cookieKey{}, cookies)
}

func (c *Client) url(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	return c.config.BaseURL + "/" + strings.TrimLeft(endpoint, "/")
}

// do performs one request. target, when set, receives the decoded 2xx body.
// A nil body sends no content.
func (c *Client) do(ctx context.Context, method, endpoint, query string, body any, target any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return apperrors.WrapWithMessageFor(apperrors.ErrClassNetwork, method, endpoint, errors.Wrap(err, "rate limit wait"))
		}
	}

	call := func() (any, error) {
		return nil, c.roundTrip(ctx, method, endpoint, query, body, target)
	}
	var err error
	if c.breaker != nil {
		_, err = c.breaker.Execute(call)
	} else {
		_, err = call()
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		logger.Logtype(logger.StatusDebug, 0).
			Str(logger.StrClient, c.config.Name).
			Str(logger.StrEndpoint, endpoint).
			Msg("Circuit breaker blocked request")
		return apperrors.WrapWithMessageFor(apperrors.ErrClassNetwork, method, endpoint, err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint, query string, body any, target any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return apperrors.Wrap(apperrors.ErrClassParsing, method, errors.Wrap(err, "encode body"))
		}
		reader = bytes.NewReader(buf)
	}

	url := c.url(endpoint)
	if query != "" {
		url += "?" + query
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return apperrors.WrapWithMessageFor(apperrors.ErrClassNetwork, method, endpoint, errors.Wrap(err, "create request"))
	}
	req.Header.Set("Accept", "application/json")
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookies, ok := ctx.Value(cookieKey{}).([]*http.Cookie); ok {
		for _, ck := range cookies {
			if len(c.config.ForwardCookies) == 0 || slices.Contains(c.config.ForwardCookies, ck.Name) {
				req.AddCookie(ck)
			}
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		metrics.ObserveBackend(method, 0, elapsed)
		c.recordStats(false, elapsed, err.Error())
		logger.Logtype(logger.StatusWarning, 0).
			Str(logger.StrClient, c.config.Name).
			Str(logger.StrMethod, method).
			Str(logger.StrEndpoint, endpoint).
			Err(err).
			Msg("Backend request failed")
		return apperrors.WrapWithMessageFor(apperrors.ErrClassNetwork, method, endpoint, errors.Wrap(err, "request failed"))
	}
	defer resp.Body.Close()

	metrics.ObserveBackend(method, resp.StatusCode, elapsed)
	logger.Logtype(logger.StatusDebug, 0).
		Str(logger.StrClient, c.config.Name).
		Str(logger.StrMethod, method).
		Str(logger.StrEndpoint, endpoint).
		Str(logger.StrQuery, query).
		Int(logger.StrStatus, resp.StatusCode).
		Dur("elapsed", elapsed).
		Msg("Backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		se := &StatusError{Status: resp.StatusCode, Message: parseDetail(raw), Body: string(raw)}
		c.recordStats(resp.StatusCode < 500, elapsed, se.Error())
		return apperrors.WrapWithMessageFor(apperrors.ErrClassBackend, method, endpoint, se).
			WithContext(logger.StrStatus, resp.StatusCode)
	}

	c.recordStats(true, elapsed, "")
	if target == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.WrapWithMessageFor(apperrors.ErrClassNetwork, method, endpoint, errors.Wrap(err, "read body"))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, target); err != nil {
		return apperrors.WrapWithMessageFor(apperrors.ErrClassParsing, method, endpoint, errors.Wrap(err, "decode response"))
	}
	return nil
}

// parseDetail extracts the message of an error body. It understands
// {"detail": "..."}, {"detail": [{"msg": "..."}]}, {"error": "..."} and
// {"message": "..."}.
func parseDetail(raw []byte) string {
	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return ""
	}
	if len(envelope.Detail) > 0 {
		var s string
		if json.Unmarshal(envelope.Detail, &s) == nil {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(envelope.Detail, &items) == nil {
			msgs := make([]string, 0, len(items))
			for _, it := range items {
				if it.Msg != "" {
					msgs = append(msgs, it.Msg)
				}
			}
			return strings.Join(msgs, "; ")
		}
	}
	if envelope.Error != "" {
		return envelope.Error
	}
	return envelope.Message
}

func (c *Client) recordStats(success bool, elapsed time.Duration, errorMsg string) {
	c.stats.mu.Lock()
	defer c.stats.mu.Unlock()

	c.stats.RequestsTotal++
	c.stats.LastRequestAt = time.Now()
	c.stats.totalResponseTimeMs += elapsed.Milliseconds()
	c.stats.AvgResponseTimeMs = c.stats.totalResponseTimeMs / c.stats.RequestsTotal
	if success {
		c.stats.SuccessCount++
	} else {
		c.stats.FailureCount++
	}
	if errorMsg != "" {
		c.stats.LastErrorAt = c.stats.LastRequestAt
		c.stats.LastErrorMessage = errorMsg
	}
}

// StatsSnapshot is a copy of the client statistics.
type StatsSnapshot struct {
	RequestsTotal     int64     `json:"requests_total"`
	SuccessCount      int64     `json:"success_count"`
	FailureCount      int64     `json:"failure_count"`
	AvgResponseTimeMs int64     `json:"avg_response_time_ms"`
	LastRequestAt     time.Time `json:"last_request_at"`
	LastErrorAt       time.Time `json:"last_error_at"`
	LastErrorMessage  string    `json:"last_error_message,omitempty"`
	BreakerState      string    `json:"breaker_state"`
}

// GetStats returns a copy of the current statistics.
func (c *Client) GetStats() StatsSnapshot {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return StatsSnapshot{
		RequestsTotal:     c.stats.RequestsTotal,
		SuccessCount:      c.stats.SuccessCount,
		FailureCount:      c.stats.FailureCount,
		AvgResponseTimeMs: c.stats.AvgResponseTimeMs,
		LastRequestAt:     c.stats.LastRequestAt,
		LastErrorAt:       c.stats.LastErrorAt,
		LastErrorMessage:  c.stats.LastErrorMessage,
		BreakerState:      c.stats.BreakerState,
	}
}

// GetName returns the configured client name.
func (c *Client) GetName() string {
	return c.config.Name
}

// LogStats writes the statistics to the log.
func (c *Client) LogStats() {
	s := c.GetStats()
	logger.Logtype(logger.StatusInfo, 0).
		Str(logger.StrClient, c.config.Name).
		Int64("requests", s.RequestsTotal).
		Int64("failures", s.FailureCount).
		Int64("avg_ms", s.AvgResponseTimeMs).
		Str("breaker", s.BreakerState).
		Str("last_error", s.LastErrorMessage).
		Msg("Backend client statistics")
}
