// Package httpclient wraps outbound third-party HTTP calls with retry and backoff.
package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"safeguard/config"
	deliverycontext "safeguard/internal/delivery/context"
	"safeguard/internal/errors"
)

const maxErrorBodyExcerpt = 256

// Doer sends a single HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API request failed with status %d: %s", e.StatusCode, e.URL)
}

// Temporary reports whether the status is worth retrying.
func (e *StatusError) Temporary() bool {
	return e.StatusCode >= http.StatusInternalServerError
}

// RetryClient retries 5xx responses and transport errors with exponential backoff.
// 4xx responses are returned to the caller on the first attempt.
type RetryClient struct {
	doer      Doer
	attempts  int
	baseDelay time.Duration
	logger    *slog.Logger
	sleep     func(ctx context.Context, d time.Duration) error
}

// Option customizes a RetryClient.
type Option func(*RetryClient)

// WithSleep replaces the backoff sleeper, mainly for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *RetryClient) {
		c.sleep = sleep
	}
}

// NewRetryClient wraps doer. attempts counts the first try.
func NewRetryClient(doer Doer, attempts int, baseDelay time.Duration, logger *slog.Logger, opts ...Option) *RetryClient {
	if attempts < 1 {
		attempts = 1
	}
	c := &RetryClient{
		doer:      doer,
		attempts:  attempts,
		baseDelay: baseDelay,
		logger:    logger,
		sleep:     sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// New builds the shared outbound client from config.
func New(cfg *config.Config, logger *slog.Logger) *RetryClient {
	return NewRetryClient(
		&http.Client{Timeout: cfg.Retry.RequestTimeout},
		cfg.Retry.Attempts,
		cfg.Retry.BaseDelay,
		logger,
	)
}

// Do sends req, retrying as needed. On exhaustion the last error is returned.
func (c *RetryClient) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	logger := deliverycontext.GetLoggerOrDefault(ctx, c.logger)

	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		attemptReq, err := rewind(req, attempt)
		if err != nil {
			return nil, err
		}

		resp, err := c.doer.Do(attemptReq)
		switch {
		case err != nil:
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, errors.WithStack(ctxErr)
			}
			lastErr = errors.WithStack(err)
		case resp.StatusCode >= http.StatusInternalServerError:
			lastErr = statusError(resp, req)
		default:
			return resp, nil
		}

		if attempt == c.attempts-1 {
			break
		}

		delay := c.baseDelay << attempt
		logger.Warn("Outbound request failed, retrying",
			slog.String("url", req.URL.Redacted()),
			slog.Int("attempt", attempt+1),
			slog.Int("attempts", c.attempts),
			slog.Duration("delay", delay),
			slog.Any("error", lastErr),
		)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	logger.Error("Outbound request failed after retries",
		slog.String("url", req.URL.Redacted()),
		slog.Int("attempts", c.attempts),
		slog.Any("error", lastErr),
	)

	return nil, lastErr
}

// GetJSON issues a GET and decodes a 2xx JSON body into out. Non-2xx responses become *StatusError.
func (c *RetryClient) GetJSON(ctx context.Context, rawURL string, header http.Header, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return errors.WithStack(err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp, req)
	}

	return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "decode response body")
}

// rewind returns a request whose body can be sent again on retries.
func rewind(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 0 || req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, errors.New("request body cannot be replayed for retry")
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, errors.Wrap(err, "rewind request body")
	}
	clone := req.Clone(req.Context())
	clone.Body = body

	return clone, nil
}

// statusError drains and closes the body.
func statusError(resp *http.Response, req *http.Request) *StatusError {
	defer resp.Body.Close()
	excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyExcerpt))

	return &StatusError{
		StatusCode: resp.StatusCode,
		URL:        req.URL.Redacted(),
		Body:       string(excerpt),
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
