package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/emilythestrangee/dealdrop/backend/internal/config"
	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client talks to the deals API. It satisfies votes.Submitter.
type Client struct {
	baseURL     string
	token       string
	client      *http.Client
	rateLimiter *rate.Limiter
}

type Option func(*Client)

// WithToken authenticates every request with a Bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithHTTPClient replaces the default client (10s timeout).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) { c.rateLimiter = rate.NewLimiter(rate.Limit(perSecond), burst) }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		client:      &http.Client{Timeout: 10 * time.Second},
		rateLimiter: rate.NewLimiter(rate.Limit(5), 10),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type voteResponse struct {
	Action   votes.Action   `json:"action"`
	Score    int            `json:"score"`
	UserVote votes.VoteType `json:"userVote"`
}

// SubmitVote posts a vote. A 401 is reported as votes.ErrUnauthenticated.
func (c *Client) SubmitVote(ctx context.Context, req votes.Request) (votes.Action, error) {
	var resp voteResponse
	if err := c.do(ctx, http.MethodPost, "/api/votes", req, &resp); err != nil {
		return "", err
	}
	return resp.Action, nil
}

// ItemView is a deal, coupon or discussion as the API returns it. The item
// body is left undecoded.
type ItemView struct {
	Kind votes.TargetType `json:"kind"`
	Item json.RawMessage  `json:"item"`
	votes.Projection
	CommentCount int64 `json:"commentCount"`
}

// Item fetches the projection of one deal, coupon or discussion.
func (c *Client) Item(ctx context.Context, key votes.ItemKey) (*ItemView, error) {
	var view ItemView
	path := fmt.Sprintf("/api/%ss/%d", key.Type, key.ID)
	if err := c.do(ctx, http.MethodGet, path, nil, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Seed loads an item and writes its projection to store, so views start
// from the server's state.
func (c *Client) Seed(ctx context.Context, store *votes.Store, key votes.ItemKey) error {
	view, err := c.Item(ctx, key)
	if err != nil {
		return err
	}
	store.Set(key, view.Projection)
	return nil
}

// Controller returns an optimistic vote controller that submits through c
// and gives up on a vote after cfg.VoteTimeout.
func (c *Client) Controller(store *votes.Store, cfg *config.Config) *votes.Controller {
	return votes.NewController(c, store, cfg.VoteTimeout)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait: %w", err)
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return votes.ErrUnauthenticated
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}
