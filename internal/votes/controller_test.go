package votes

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type submitFunc func(ctx context.Context, req Request) (Action, error)

func (f submitFunc) SubmitVote(ctx context.Context, req Request) (Action, error) {
	return f(ctx, req)
}

func replies(actions ...Action) submitFunc {
	var mu sync.Mutex
	return func(ctx context.Context, req Request) (Action, error) {
		mu.Lock()
		defer mu.Unlock()
		a := actions[0]
		actions = actions[1:]
		return a, nil
	}
}

var dealKey = ItemKey{Type: TargetDeal, ID: 1}

func TestControllerUpvoteThenToggleOff(t *testing.T) {
	store := NewStore()
	store.Set(dealKey, Projection{Score: 5})
	c := NewController(replies(ActionCreated, ActionRemoved), store, time.Second)

	p, ok := c.Apply(dealKey, VoteUp)
	require.True(t, ok)
	assert.Equal(t, Projection{Score: 6, UserVote: VoteUp}, p.Predicted)
	cur, _ := store.Get(dealKey)
	assert.Equal(t, p.Predicted, cur, "prediction is published before the request")

	got, err := p.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Projection{Score: 6, UserVote: VoteUp}, got)
	assert.Equal(t, StateCommitted, p.State())

	p, ok = c.Apply(dealKey, VoteUp)
	require.True(t, ok)
	assert.Equal(t, Projection{Score: 5}, p.Predicted)

	got, err = p.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Projection{Score: 5}, got)
	cur, _ = store.Get(dealKey)
	assert.Equal(t, Projection{Score: 5}, cur)
}

func TestControllerRollbackOnServerError(t *testing.T) {
	store := NewStore()
	store.Set(dealKey, Projection{Score: 3, UserVote: VoteDown})
	c := NewController(submitFunc(func(ctx context.Context, req Request) (Action, error) {
		return "", errors.New("500 internal server error")
	}), store, time.Second)

	p, ok := c.Apply(dealKey, VoteUp)
	require.True(t, ok)
	assert.Equal(t, Projection{Score: 5, UserVote: VoteUp}, p.Predicted)

	got, err := p.Commit(context.Background())
	require.Error(t, err)
	assert.Equal(t, Projection{Score: 3, UserVote: VoteDown}, got)
	assert.Equal(t, StateRolledBack, p.State())

	var ve *VoteError
	require.ErrorAs(t, err, &ve)
	assert.False(t, ve.Unauthenticated())
	assert.Contains(t, ve.Message(), "Something went wrong")

	cur, _ := store.Get(dealKey)
	assert.Equal(t, Projection{Score: 3, UserVote: VoteDown}, cur)
	assert.False(t, c.Busy(dealKey))
}

func TestControllerRollbackIsExactForEveryStart(t *testing.T) {
	starts := []Projection{
		{Score: 0}, {Score: 10, UserVote: VoteUp}, {Score: -4, UserVote: VoteDown},
	}
	fail := submitFunc(func(ctx context.Context, req Request) (Action, error) {
		return "", errors.New("boom")
	})

	for _, start := range starts {
		for _, v := range []VoteType{VoteUp, VoteDown} {
			store := NewStore()
			store.Set(dealKey, start)
			c := NewController(fail, store, time.Second)

			got, err := c.Vote(context.Background(), dealKey, v)
			require.Error(t, err)
			assert.Equal(t, start, got)
			cur, _ := store.Get(dealKey)
			assert.Equal(t, start, cur)
		}
	}
}

func TestControllerUnauthenticated(t *testing.T) {
	store := NewStore()
	c := NewController(submitFunc(func(ctx context.Context, req Request) (Action, error) {
		return "", ErrUnauthenticated
	}), store, time.Second)

	_, err := c.Vote(context.Background(), dealKey, VoteDown)

	var ve *VoteError
	require.ErrorAs(t, err, &ve)
	assert.True(t, ve.Unauthenticated())
	assert.Equal(t, "You must be logged in to vote.", ve.Message())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestControllerUnknownActionRollsBack(t *testing.T) {
	store := NewStore()
	store.Set(dealKey, Projection{Score: 2})
	c := NewController(replies(Action("accepted")), store, time.Second)

	got, err := c.Vote(context.Background(), dealKey, VoteUp)
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.Equal(t, Projection{Score: 2}, got)
}

func TestControllerIgnoresClickWhilePending(t *testing.T) {
	store := NewStore()
	store.Set(dealKey, Projection{Score: 1})

	release := make(chan struct{})
	var calls atomic.Int32
	c := NewController(submitFunc(func(ctx context.Context, req Request) (Action, error) {
		calls.Add(1)
		<-release
		return ActionCreated, nil
	}), store, time.Second)

	p, ok := c.Apply(dealKey, VoteUp)
	require.True(t, ok)

	done := make(chan error, 1)
	go func() {
		_, err := p.Commit(context.Background())
		done <- err
	}()

	_, ok = c.Apply(dealKey, VoteUp)
	assert.False(t, ok)
	_, ok = c.Apply(dealKey, VoteDown)
	assert.False(t, ok)

	got, err := c.Vote(context.Background(), dealKey, VoteDown)
	require.NoError(t, err)
	assert.Equal(t, Projection{Score: 2, UserVote: VoteUp}, got)

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, int32(1), calls.Load())

	cur, _ := store.Get(dealKey)
	assert.Equal(t, Projection{Score: 2, UserVote: VoteUp}, cur)
	assert.False(t, c.Busy(dealKey))
}

func TestControllerOtherItemsAreIndependent(t *testing.T) {
	store := NewStore()
	release := make(chan struct{})
	c := NewController(submitFunc(func(ctx context.Context, req Request) (Action, error) {
		<-release
		return ActionCreated, nil
	}), store, time.Second)

	p1, ok := c.Apply(dealKey, VoteUp)
	require.True(t, ok)
	other := ItemKey{Type: TargetComment, ID: 1}
	p2, ok := c.Apply(other, VoteDown)
	require.True(t, ok)

	close(release)
	_, err := p1.Commit(context.Background())
	require.NoError(t, err)
	got, err := p2.Commit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Projection{Score: -1, UserVote: VoteDown}, got)
}

func TestControllerTimeoutRollsBack(t *testing.T) {
	store := NewStore()
	store.Set(dealKey, Projection{Score: 9, UserVote: VoteUp})
	c := NewController(submitFunc(func(ctx context.Context, req Request) (Action, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}), store, 20*time.Millisecond)

	got, err := c.Vote(context.Background(), dealKey, VoteDown)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Projection{Score: 9, UserVote: VoteUp}, got)
	assert.False(t, c.Busy(dealKey))
}

func TestControllerTimeoutWithSlowSubmitter(t *testing.T) {
	store := NewStore()
	store.Set(dealKey, Projection{Score: 5})

	replied := make(chan struct{})
	c := NewController(submitFunc(func(ctx context.Context, req Request) (Action, error) {
		defer close(replied)
		time.Sleep(200 * time.Millisecond)
		return ActionCreated, nil
	}), store, 20*time.Millisecond)

	start := time.Now()
	got, err := c.Vote(context.Background(), dealKey, VoteUp)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, elapsed, 150*time.Millisecond)
	assert.Equal(t, Projection{Score: 5}, got)
	assert.False(t, c.Busy(dealKey))

	// The late reply must not overwrite the restored state.
	<-replied
	time.Sleep(10 * time.Millisecond)
	cur, _ := store.Get(dealKey)
	assert.Equal(t, Projection{Score: 5}, cur)
}

func TestControllerParentContextCancelled(t *testing.T) {
	store := NewStore()
	store.Set(dealKey, Projection{Score: 1, UserVote: VoteUp})
	block := make(chan struct{})
	defer close(block)
	c := NewController(submitFunc(func(ctx context.Context, req Request) (Action, error) {
		<-block
		return ActionRemoved, nil
	}), store, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	p, ok := c.Apply(dealKey, VoteUp)
	require.True(t, ok)
	cancel()

	got, err := p.Commit(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, Projection{Score: 1, UserVote: VoteUp}, got)
	assert.Equal(t, StateRolledBack, p.State())
}

func TestPendingCancel(t *testing.T) {
	store := NewStore()
	store.Set(dealKey, Projection{Score: 4, UserVote: VoteDown})
	var calls atomic.Int32
	c := NewController(submitFunc(func(ctx context.Context, req Request) (Action, error) {
		calls.Add(1)
		return ActionCreated, nil
	}), store, time.Second)

	p, ok := c.Apply(dealKey, VoteUp)
	require.True(t, ok)
	assert.True(t, c.Busy(dealKey))

	require.NoError(t, p.Cancel())
	assert.Equal(t, StateRolledBack, p.State())
	assert.False(t, c.Busy(dealKey))
	cur, _ := store.Get(dealKey)
	assert.Equal(t, Projection{Score: 4, UserVote: VoteDown}, cur)

	assert.Error(t, p.Cancel())
	_, err := p.Commit(context.Background())
	assert.Error(t, err)
	assert.Equal(t, int32(0), calls.Load())

	_, ok = c.Apply(dealKey, VoteUp)
	assert.True(t, ok)
}

func TestPendingCommitTwice(t *testing.T) {
	c := NewController(replies(ActionCreated), NewStore(), time.Second)
	p, ok := c.Apply(dealKey, VoteUp)
	require.True(t, ok)

	_, err := p.Commit(context.Background())
	require.NoError(t, err)
	_, err = p.Commit(context.Background())
	assert.Error(t, err)
}

func TestControllerPublishesToSubscribers(t *testing.T) {
	store := NewStore()
	store.Set(dealKey, Projection{Score: 5})
	updates, cancel := store.Subscribe(dealKey)
	defer cancel()

	c := NewController(replies(ActionCreated), store, time.Second)
	_, err := c.Vote(context.Background(), dealKey, VoteUp)
	require.NoError(t, err)

	// Only the latest value is kept for a slow reader.
	select {
	case p := <-updates:
		assert.Equal(t, Projection{Score: 6, UserVote: VoteUp}, p)
	default:
		t.Fatal("expected an update")
	}
}

func TestStoreUnsubscribe(t *testing.T) {
	store := NewStore()
	updates, cancel := store.Subscribe(dealKey)
	cancel()
	cancel()

	_, open := <-updates
	assert.False(t, open)
	store.Set(dealKey, Projection{Score: 1})
}
