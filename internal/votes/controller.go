package votes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// DefaultTimeout bounds a single remote vote when the controller is not
// configured otherwise.
const DefaultTimeout = 10 * time.Second

// Submitter sends a vote to the remote endpoint and reports what it did.
type Submitter interface {
	SubmitVote(ctx context.Context, req Request) (Action, error)
}

// State is the lifecycle of one vote attempt.
type State int

const (
	StateIdle State = iota
	StatePending
	StateCommitted
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}

// VoteError is returned from Commit after a rollback.
type VoteError struct {
	Key ItemKey
	Err error
}

func (e *VoteError) Error() string {
	return fmt.Sprintf("vote on %s: %v", e.Key, e.Err)
}

func (e *VoteError) Unwrap() error { return e.Err }

// Unauthenticated reports whether the vote failed because nobody is logged in.
func (e *VoteError) Unauthenticated() bool {
	return errors.Is(e.Err, ErrUnauthenticated)
}

// Message is the text to show the user.
func (e *VoteError) Message() string {
	if e.Unauthenticated() {
		return "You must be logged in to vote."
	}
	return "Something went wrong while saving your vote. Please try again."
}

// Controller applies votes optimistically and reconciles them against the
// remote endpoint. At most one request per item is in flight.
type Controller struct {
	submitter Submitter
	store     *Store
	timeout   time.Duration

	mu      sync.Mutex
	pending map[ItemKey]struct{}
}

func NewController(submitter Submitter, store *Store, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Controller{
		submitter: submitter,
		store:     store,
		timeout:   timeout,
		pending:   make(map[ItemKey]struct{}),
	}
}

// Store returns the store the controller writes through.
func (c *Controller) Store() *Store {
	return c.store
}

// Pending is one in-flight vote attempt.
type Pending struct {
	c         *Controller
	key       ItemKey
	requested VoteType
	before    Projection
	Predicted Projection

	mu    sync.Mutex
	state State
	sent  bool
}

// Apply predicts the result of clicking requested on key and publishes it to
// the store right away. It returns false without touching anything when a
// vote on the same item is still pending. The caller must finish the attempt
// with Commit or Cancel; until then the item ignores further clicks.
func (c *Controller) Apply(key ItemKey, requested VoteType) (*Pending, bool) {
	c.mu.Lock()
	if _, busy := c.pending[key]; busy {
		c.mu.Unlock()
		return nil, false
	}
	c.pending[key] = struct{}{}
	c.mu.Unlock()

	before, _ := c.store.Get(key)
	p := &Pending{
		c:         c,
		key:       key,
		requested: requested,
		before:    before,
		Predicted: before,
		state:     StatePending,
	}
	if requested.Valid() {
		p.Predicted = before.Predict(requested)
	}
	c.store.Set(key, p.Predicted)
	return p, true
}

// Busy reports whether a vote on key is pending.
func (c *Controller) Busy(key ItemKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[key]
	return ok
}

// State returns where this attempt is in its lifecycle.
func (p *Pending) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Before is the projection captured when the vote was applied.
func (p *Pending) Before() Projection {
	return p.before
}

// Commit sends the vote and settles it. On success the store holds the state
// the server confirmed; on any failure it holds the pre-click state again.
// Calling Commit on a settled attempt is an error.
func (p *Pending) Commit(ctx context.Context) (Projection, error) {
	p.mu.Lock()
	if p.state != StatePending || p.sent {
		st := p.state
		p.mu.Unlock()
		return Projection{}, fmt.Errorf("vote on %s already %s", p.key, st)
	}
	p.sent = true
	p.mu.Unlock()
	defer p.c.release(p.key)

	if !p.requested.Valid() {
		return p.rollback(fmt.Errorf("invalid vote type %q", p.requested))
	}

	ctx, cancel := context.WithTimeout(ctx, p.c.timeout)
	defer cancel()

	// A reply after the deadline lands in the buffer and is dropped.
	done := make(chan submitResult, 1)
	go func() {
		action, err := p.c.submitter.SubmitVote(ctx, Request{
			TargetID:   p.key.ID,
			TargetType: p.key.Type,
			VoteType:   p.requested,
		})
		done <- submitResult{action: action, err: err}
	}()

	var res submitResult
	select {
	case res = <-done:
	case <-ctx.Done():
		return p.rollback(ctx.Err())
	}
	if res.err != nil {
		return p.rollback(res.err)
	}
	if err := ctx.Err(); err != nil {
		return p.rollback(err)
	}
	action := res.action

	committed, err := p.before.Reconcile(p.requested, action)
	if err != nil {
		return p.rollback(fmt.Errorf("%w: %q", err, action))
	}

	p.c.store.Set(p.key, committed)
	p.settle(StateCommitted)
	return committed, nil
}

// Cancel abandons an attempt that was applied but never committed. The
// pre-click projection is restored and the item accepts votes again.
func (p *Pending) Cancel() error {
	p.mu.Lock()
	if p.state != StatePending || p.sent {
		st := p.state
		p.mu.Unlock()
		return fmt.Errorf("vote on %s already %s", p.key, st)
	}
	p.sent = true
	p.mu.Unlock()
	defer p.c.release(p.key)

	p.c.store.Set(p.key, p.before)
	p.settle(StateRolledBack)
	return nil
}

type submitResult struct {
	action Action
	err    error
}

func (p *Pending) rollback(err error) (Projection, error) {
	p.c.store.Set(p.key, p.before)
	p.settle(StateRolledBack)
	slog.Warn("Vote rolled back", "item", p.key.String(), "error", err)
	return p.before, &VoteError{Key: p.key, Err: err}
}

func (p *Pending) settle(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}

func (c *Controller) release(key ItemKey) {
	c.mu.Lock()
	delete(c.pending, key)
	c.mu.Unlock()
}

// Vote is Apply followed by Commit. A click ignored because of a pending vote
// returns the current projection and a nil error.
func (c *Controller) Vote(ctx context.Context, key ItemKey, requested VoteType) (Projection, error) {
	p, ok := c.Apply(key, requested)
	if !ok {
		cur, _ := c.store.Get(key)
		return cur, nil
	}
	return p.Commit(ctx)
}
