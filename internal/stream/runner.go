package stream

import (
	"context"
	"time"
)

// Strategy selects how a resource is kept fresh after its initial fetch.
// Exactly one of the three variants applies per resource.
type Strategy interface {
	isStrategy()
}

// Manual performs a single refresh at startup and nothing further; callers
// trigger later refreshes themselves.
type Manual struct{}

// Polling refreshes on a fixed interval. Polls are only scheduled when the
// first fetch returned a non-empty snapshot, so an unreachable upstream is
// not hammered; rerunning the runner recomputes that decision from scratch.
type Polling struct {
	Interval time.Duration
}

// PushInvalidated subscribes to a server-push channel whose messages carry no
// payload: every inbound message means "re-fetch now".
type PushInvalidated struct {
	Listener       *Listener
	ReconnectDelay time.Duration
}

func (Manual) isStrategy()          {}
func (Polling) isStrategy()         {}
func (PushInvalidated) isStrategy() {}

// Runner drives one resource according to its strategy. Run blocks until the
// context is cancelled (or, for Manual and empty-first-fetch Polling, until
// the initial refresh completes).
type Runner[T any] struct {
	res      *Resource[T]
	strategy Strategy
}

// NewRunner pairs a resource with its refresh strategy.
func NewRunner[T any](res *Resource[T], strategy Strategy) *Runner[T] {
	return &Runner[T]{res: res, strategy: strategy}
}

// Run executes the strategy. The initial refresh error is not fatal: stale or
// empty data plus the resource error state is the recovery path, and the next
// scheduled refresh retries automatically.
func (r *Runner[T]) Run(ctx context.Context) error {
	switch s := r.strategy.(type) {
	case Polling:
		return r.runPolling(ctx, s)
	case PushInvalidated:
		return r.runPush(ctx, s)
	default:
		_ = r.res.Refresh(ctx)
		return ctx.Err()
	}
}

func (r *Runner[T]) runPolling(ctx context.Context, s Polling) error {
	_ = r.res.Refresh(ctx)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if r.res.Size() == 0 {
		// Empty first fetch: do not schedule recurring polls.
		return nil
	}

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			_ = r.res.Refresh(ctx)
		}
	}
}

func (r *Runner[T]) runPush(ctx context.Context, s PushInvalidated) error {
	defer r.res.setConnected(false)
	return s.Listener.Listen(ctx, ListenerHooks{
		OnUp: func() {
			r.res.setConnected(true)
			_ = r.res.Refresh(ctx)
		},
		OnMessage: func(string) {
			// The channel is a pure invalidation signal; the payload is ignored.
			_ = r.res.Refresh(ctx)
		},
		OnDown: func() {
			r.res.setConnected(false)
		},
	})
}
