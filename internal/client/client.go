// Package client talks to a running ruslat server.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hyperjump/ruslat/internal/cache"
	"github.com/hyperjump/ruslat/internal/config"
	"github.com/hyperjump/ruslat/internal/match"
	"github.com/hyperjump/ruslat/internal/models"
)

// ErrUnavailable is returned when the server cannot be reached or answers
// with something other than the expected payload.
var ErrUnavailable = errors.New("lookup service unavailable")

// RemoteError is an error reported by the server in an {"error": ...} body.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return "server: " + e.Message
}

// Is matches match.ErrEmptyQuery when the server rejected a blank query.
func (e *RemoteError) Is(target error) bool {
	return target == match.ErrEmptyQuery && e.Message == match.ErrEmptyQuery.Error()
}

// Client queries the lookup API. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	cache   cache.Cache
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithCache caches page lookups in c.
func WithCache(c cache.Cache) Option {
	return func(cl *Client) { cl.cache = c }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(cl *Client) { cl.http = h }
}

// WithRateLimit throttles outgoing requests to perSecond with the given burst.
// A non-positive perSecond disables throttling.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(cl *Client) {
		if perSecond <= 0 {
			cl.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		cl.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets a logger for debug output (cache hits, requests).
func WithLogger(l *zap.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

// New creates a client for the server at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 5 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewFromConfig creates a client from cfg. c may be nil to disable caching.
func NewFromConfig(cfg *config.ClientConfig, c cache.Cache, logger *zap.Logger) *Client {
	opts := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		WithRateLimit(cfg.RateLimit, int(cfg.RateLimit)+1),
	}
	if c != nil {
		opts = append(opts, WithCache(c))
	}
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	return New(cfg.ServerURL, opts...)
}

// SearchByPage returns the ids of users whose page handle matches search.
// The query is trimmed and lowercased; a blank query returns no ids without a
// request. Successful answers are cached per normalized query.
func (c *Client) SearchByPage(ctx context.Context, search string) ([]string, error) {
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return []string{}, nil
	}

	if c.cache != nil {
		ids, ok, err := c.cache.Get(ctx, search)
		if err != nil {
			c.logger.Debug("cache get failed", zap.String("query", search), zap.Error(err))
		} else if ok {
			c.logger.Debug("cache hit", zap.String("query", search))
			return ids, nil
		}
	}

	var raw []models.ID
	if err := c.get(ctx, "/api/users-by-page/"+url.PathEscape(search), &raw); err != nil {
		return nil, err
	}
	ids := make([]string, len(raw))
	for i, id := range raw {
		ids[i] = string(id)
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, search, ids); err != nil {
			c.logger.Debug("cache set failed", zap.String("query", search), zap.Error(err))
		}
	}
	return ids, nil
}

// SearchUsers returns the users whose names match query. A blank query returns all users.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]*models.User, error) {
	var users []*models.User
	if err := c.get(ctx, "/api/users/search?q="+url.QueryEscape(query), &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Users returns every user known to the server.
func (c *Client) Users(ctx context.Context) ([]*models.User, error) {
	var users []*models.User
	if err := c.get(ctx, "/api/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Health reports whether the server answers its health check.
func (c *Client) Health(ctx context.Context) error {
	var body map[string]string
	return c.get(ctx, "/health", &body)
}

// get fetches path and decodes a JSON body into dest. An {"error": ...} object
// becomes a RemoteError; transport, status and decode failures wrap ErrUnavailable.
func (c *Client) get(ctx context.Context, path string, dest any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("request", zap.String("path", path))
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %w", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		var e struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
			return &RemoteError{Message: e.Error}
		}
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("%w: bad response data: %w", ErrUnavailable, err)
	}
	return nil
}
