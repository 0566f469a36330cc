package api

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"hobbyhub/internal/client/storage"
)

// refreshTimeout bounds the refresh call. It is detached from the caller that
// happened to start it, since queued requests depend on its outcome too.
const refreshTimeout = 15 * time.Second

type refreshState int

const (
	refreshIdle refreshState = iota
	refreshRunning
)

type refreshResult struct {
	turn *replayTurn
	err  error
}

// refresher serializes token refreshes: one in flight at a time, with every other
// 401 parked in a FIFO queue until it finishes.
type refresher struct {
	mu    sync.Mutex
	state refreshState
	queue []chan refreshResult
}

// leave drops a queued request that gave up. It reports false when the queue was
// already drained, in which case a result is on its way.
func (r *refresher) leave(wait chan refreshResult) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := slices.Index(r.queue, wait)
	if i < 0 {
		return false
	}
	r.queue = slices.Delete(r.queue, i, i+1)
	return true
}

// replayTurn orders the resubmissions that follow one refresh. A request sends once
// prev is closed, and closes done when its response starts arriving or the send fails.
type replayTurn struct {
	prev <-chan struct{}
	done chan struct{}
	once sync.Once
}

func newReplayTurn(prev <-chan struct{}) *replayTurn {
	return &replayTurn{prev: prev, done: make(chan struct{})}
}

// wait blocks until the replay ahead has been answered. A caller that gives up still
// hands the turn on once its predecessors are through.
func (t *replayTurn) wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	select {
	case <-t.prev:
		return nil
	case <-ctx.Done():
		go t.pass()
		return ctx.Err()
	}
}

func (t *replayTurn) pass() {
	<-t.prev
	t.finish()
}

func (t *replayTurn) finish() {
	if t == nil {
		return
	}
	t.once.Do(func() { close(t.done) })
}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refreshSession is called after staleToken was rejected with a 401. On success the
// caller resubmits when the returned turn comes up; a nil turn means right away.
// Replays go out in the order their requests were queued, the refreshing request first.
func (c *Client) refreshSession(ctx context.Context, staleToken string) (*replayTurn, error) {
	r := &c.refresh
	r.mu.Lock()
	if r.state == refreshRunning {
		wait := make(chan refreshResult, 1)
		r.queue = append(r.queue, wait)
		r.mu.Unlock()
		c.log.Debug("refresh in flight, request queued")
		select {
		case res := <-wait:
			return res.turn, res.err
		case <-ctx.Done():
			if !r.leave(wait) {
				if res := <-wait; res.turn != nil {
					go res.turn.pass()
				}
			}
			return nil, ctx.Err()
		}
	}

	// a refresh finished after this request went out: resubmit with its token, or
	// give up if it failed and cleared the credentials
	current, _, err := c.store.Get(ctx, storage.KeyAccessToken)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if current != staleToken {
		r.mu.Unlock()
		if current == "" {
			return nil, ErrSessionExpired.with(nil)
		}
		return nil, nil
	}
	r.state = refreshRunning
	r.mu.Unlock()

	c.log.Debug("access token rejected, refreshing session")
	err = c.runRefresh(ctx)

	r.mu.Lock()
	waiters := r.queue
	r.queue = nil
	r.state = refreshIdle
	r.mu.Unlock()

	if err != nil {
		for _, w := range waiters {
			w <- refreshResult{err: err}
		}
		if c.onExpired != nil {
			c.onExpired()
		}
		return nil, err
	}

	ready := make(chan struct{})
	close(ready)
	first := newReplayTurn(ready)
	prev := first.done
	for _, w := range waiters {
		turn := newReplayTurn(prev)
		w <- refreshResult{turn: turn}
		prev = turn.done
	}
	return first, nil
}

// runRefresh exchanges the stored refresh token for a new pair. Any failure clears the
// stored credentials and yields ErrSessionExpired.
func (c *Client) runRefresh(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), refreshTimeout)
	defer cancel()

	fail := func(cause error) error {
		c.log.Warn("session refresh failed, clearing credentials", "error", cause)
		if err := storage.ClearCredentials(ctx, c.store); err != nil {
			c.log.Error("could not clear credentials", "error", err)
		}
		return ErrSessionExpired.with(cause)
	}

	creds, err := storage.LoadCredentials(ctx, c.store)
	if err != nil {
		return fail(err)
	}
	if creds.RefreshToken == "" {
		return fail(nil)
	}

	body, err := json.Marshal(map[string]string{"refreshToken": creds.RefreshToken})
	if err != nil {
		return fail(err)
	}
	raw, err := c.send(ctx, http.MethodPost, c.resolve(PathRefreshToken), body, "")
	if err != nil {
		return fail(err)
	}
	env, err := normalize(raw)
	if err != nil {
		return fail(err)
	}
	pair, err := Decode[tokenPair](env)
	if err != nil {
		return fail(err)
	}
	if pair.AccessToken == "" {
		return fail(&Error{Status: http.StatusOK, Message: "refresh response has no access token", Code: CodeBadResponse})
	}

	if err := storage.SaveCredentials(ctx, c.store, storage.Credentials{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}); err != nil {
		return fail(err)
	}
	c.log.Debug("session refreshed")
	return nil
}
