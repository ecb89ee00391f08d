package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/emilythestrangee/dealdrop/backend/internal/config"
	"github.com/emilythestrangee/dealdrop/backend/internal/votes"
)

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c := New(srv.URL, opts...)
	c.rateLimiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func TestSubmitVote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/votes", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var req votes.Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, votes.Request{TargetID: 7, TargetType: votes.TargetCoupon, VoteType: votes.VoteDown}, req)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"action":"created","score":-1,"userVote":"down"}`))
	}, WithToken("tok"))

	action, err := c.SubmitVote(context.Background(), votes.Request{TargetID: 7, TargetType: votes.TargetCoupon, VoteType: votes.VoteDown})
	require.NoError(t, err)
	assert.Equal(t, votes.ActionCreated, action)
}

func TestSubmitVoteUnauthenticated(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Unauthorized","message":"You must be logged in"}`))
	})

	_, err := c.SubmitVote(context.Background(), votes.Request{TargetID: 1, TargetType: votes.TargetDeal, VoteType: votes.VoteUp})
	assert.ErrorIs(t, err, votes.ErrUnauthenticated)
}

func TestSubmitVoteServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to vote","message":"database unavailable"}`))
	})

	_, err := c.SubmitVote(context.Background(), votes.Request{TargetID: 1, TargetType: votes.TargetDeal, VoteType: votes.VoteUp})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "database unavailable", apiErr.Message)
}

func TestControllerOverHTTP(t *testing.T) {
	var calls int
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/deals/3":
			w.Write([]byte(`{"kind":"deal","item":{"id":3},"score":3,"userVote":"down","commentCount":2}`))
		case "/api/votes":
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(`{"error":"boom"}`))
				return
			}
			w.Write([]byte(`{"action":"updated"}`))
		default:
			http.NotFound(w, r)
		}
	}, WithToken("tok"))

	ctx := context.Background()
	key := votes.ItemKey{Type: votes.TargetDeal, ID: 3}
	store := votes.NewStore()
	require.NoError(t, c.Seed(ctx, store, key))

	view, err := c.Item(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, votes.TargetDeal, view.Kind)
	assert.EqualValues(t, 2, view.CommentCount)
	assert.JSONEq(t, `{"id":3}`, string(view.Item))

	ctrl := c.Controller(store, &config.Config{VoteTimeout: time.Second})

	got, err := ctrl.Vote(ctx, key, votes.VoteUp)
	require.Error(t, err)
	assert.Equal(t, votes.Projection{Score: 3, UserVote: votes.VoteDown}, got)

	got, err = ctrl.Vote(ctx, key, votes.VoteUp)
	require.NoError(t, err)
	assert.Equal(t, votes.Projection{Score: 5, UserVote: votes.VoteUp}, got)
}

func TestControllerUsesConfiguredTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write([]byte(`{"action":"created"}`))
	})

	key := votes.ItemKey{Type: votes.TargetCoupon, ID: 8}
	store := votes.NewStore()
	store.Set(key, votes.Projection{Score: 2})
	ctrl := c.Controller(store, &config.Config{VoteTimeout: 30 * time.Millisecond})

	got, err := ctrl.Vote(context.Background(), key, votes.VoteUp)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, votes.Projection{Score: 2}, got)
}

func TestItemNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Deal not found"}`))
	})

	_, err := c.Item(context.Background(), votes.ItemKey{Type: votes.TargetDeal, ID: 1})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "Deal not found", apiErr.Message)
}

func TestRateLimiterHonoursContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"action":"created"}`))
	})
	c.rateLimiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	ctx := context.Background()
	_, err := c.SubmitVote(ctx, votes.Request{TargetID: 1, TargetType: votes.TargetDeal, VoteType: votes.VoteUp})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = c.SubmitVote(ctx, votes.Request{TargetID: 1, TargetType: votes.TargetDeal, VoteType: votes.VoteUp})
	assert.Error(t, err)
}
