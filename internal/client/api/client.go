// Package api is the HTTP client for the live location and alert endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"safeguard/internal/domain/entity"
	"safeguard/internal/errors"
	"safeguard/internal/infra/cache"
	"safeguard/internal/infra/httpclient"

	"github.com/google/uuid"
)

const defaultAlertsTTL = 10 * time.Minute

// Error is a non-2xx answer decoded from the error envelope.
type Error struct {
	StatusCode int
	Code       string
	Message    string
	Errors     []string
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Errors) > 0 {
		msg = strings.Join(e.Errors, "; ")
	}
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}

	return fmt.Sprintf("api error %d: %s", e.StatusCode, msg)
}

// IsNotFound reports whether err is a 404 answer.
func IsNotFound(err error) bool {
	apiErr, ok := errors.AsType[*Error](err)

	return ok && apiErr.StatusCode == http.StatusNotFound
}

type envelope[T any] struct {
	Success  bool     `json:"success"`
	Data     T        `json:"data"`
	Count    *int     `json:"count"`
	Message  string   `json:"message"`
	Fallback bool     `json:"fallback"`
	Error    string   `json:"error"`
	Errors   []string `json:"errors"`
	Code     string   `json:"code"`
}

// ShareRequest is a position push.
type ShareRequest struct {
	Name      string      `json:"name,omitempty"`
	Latitude  float64     `json:"lat"`
	Longitude float64     `json:"lng"`
	Accuracy  *float64    `json:"accuracy,omitempty"`
	Heading   *float64    `json:"heading,omitempty"`
	Speed     *float64    `json:"speed,omitempty"`
	IsSharing *bool       `json:"is_sharing,omitempty"`
	ShareWith []uuid.UUID `json:"share_with"`
}

type settingsRequest struct {
	IsSharing bool        `json:"is_sharing"`
	ShareWith []uuid.UUID `json:"share_with"`
}

// AlertQuery narrows alerts to a circle when Near is set.
type AlertQuery struct {
	Near     bool
	Lat      float64
	Lng      float64
	RadiusKm float64
}

// AlertList is an alert listing. Fallback marks partial data served by the backend.
type AlertList struct {
	Alerts   []entity.HazardAlert `json:"alerts"`
	Fallback bool                 `json:"fallback"`
	// Age is how old a cached listing is; zero for a live answer.
	Age time.Duration `json:"-"`
}

// Client talks to the backend with a session token.
type Client struct {
	baseURL   string
	token     string
	http      *httpclient.RetryClient
	cache     cache.Cache
	alertsTTL time.Duration
	logger    *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithCache serves alert listings from c while younger than ttl.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(cl *Client) {
		cl.cache = c
		if ttl > 0 {
			cl.alertsTTL = ttl
		}
	}
}

// New creates a client for baseURL.
func New(baseURL, token string, httpClient *httpclient.RetryClient, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		http:      httpClient,
		alertsTTL: defaultAlertsTTL,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ShareLocation pushes a position. created is true when this was the first push.
func (c *Client) ShareLocation(ctx context.Context, req *ShareRequest) (*entity.LiveLocation, bool, error) {
	if req.ShareWith == nil {
		req.ShareWith = []uuid.UUID{}
	}

	var out envelope[*entity.LiveLocation]
	status, err := c.call(ctx, http.MethodPost, "/live-locations", req, &out)
	if err != nil {
		return nil, false, err
	}

	return out.Data, status == http.StatusCreated, nil
}

// UpdateSharingSettings changes visibility without sending a position.
func (c *Client) UpdateSharingSettings(ctx context.Context, isSharing bool, shareWith []uuid.UUID) (*entity.LiveLocation, error) {
	if shareWith == nil {
		shareWith = []uuid.UUID{}
	}

	var out envelope[*entity.LiveLocation]
	if _, err := c.call(ctx, http.MethodPut, "/live-locations", settingsRequest{IsSharing: isSharing, ShareWith: shareWith}, &out); err != nil {
		return nil, err
	}

	return out.Data, nil
}

// StopSharing turns sharing off. A caller that never shared is already stopped.
func (c *Client) StopSharing(ctx context.Context) error {
	var out envelope[*entity.LiveLocation]
	_, err := c.call(ctx, http.MethodDelete, "/live-locations", nil, &out)
	if IsNotFound(err) {
		return nil
	}

	return err
}

// VisibleLocations lists fresh positions shared with the caller.
func (c *Client) VisibleLocations(ctx context.Context, includeOwn bool) ([]*entity.LiveLocation, error) {
	path := "/live-locations"
	if includeOwn {
		path += "?include_own=true"
	}

	var out envelope[[]*entity.LiveLocation]
	if _, err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	return out.Data, nil
}

// Alerts lists hazard alerts, served from the cache while fresh.
func (c *Client) Alerts(ctx context.Context, q AlertQuery) (*AlertList, error) {
	path := "/alerts"
	if q.Near {
		v := url.Values{}
		v.Set("lat", strconv.FormatFloat(q.Lat, 'f', -1, 64))
		v.Set("lng", strconv.FormatFloat(q.Lng, 'f', -1, 64))
		v.Set("radius", strconv.FormatFloat(q.RadiusKm, 'f', -1, 64))
		path += "?" + v.Encode()
	}
	key := "client:alerts:" + path

	if c.cache != nil {
		list, age, ok, err := cache.GetJSON[AlertList](ctx, c.cache, key, c.alertsTTL)
		if err != nil {
			c.logger.Warn("Alert cache read failed", slog.Any("error", err))
		} else if ok {
			list.Age = age

			return &list, nil
		}
	}

	var out envelope[[]entity.HazardAlert]
	if _, err := c.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	list := &AlertList{Alerts: out.Data, Fallback: out.Fallback}

	// Degraded listings are not cached so the next call retries the live feed.
	if c.cache != nil && !list.Fallback {
		if err := cache.PutJSON(ctx, c.cache, key, list); err != nil {
			c.logger.Warn("Alert cache write failed", slog.Any("error", err))
		}
	}

	return list, nil
}

// call sends a JSON request and decodes the envelope into out. Non-2xx answers become *Error.
func (c *Client) call(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return 0, errors.WithStack(err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if statusErr, ok := errors.AsType[*httpclient.StatusError](err); ok {
			return 0, decodeError(statusErr.StatusCode, []byte(statusErr.Body))
		}

		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, errors.Wrap(err, "read response body")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, decodeError(resp.StatusCode, raw)
	}

	return resp.StatusCode, errors.Wrap(json.Unmarshal(raw, out), "decode response body")
}

func decodeError(status int, raw []byte) error {
	apiErr := &Error{StatusCode: status}

	var env envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err == nil {
		apiErr.Code = env.Code
		apiErr.Message = env.Error
		apiErr.Errors = env.Errors
	}

	return apiErr
}
