package stream

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"georisk/internal/platform/metrics"
)

// ChangeEvent records that a snapshot was judged materially different from
// its predecessor. Only the most recent event per resource is retained; it is
// state, not a queue.
type ChangeEvent struct {
	Domain    string
	Timestamp time.Time
	Meta      map[string]string
}

// FetchFunc loads one complete snapshot from the upstream. The context is the
// caller-owned cancellation token.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// DigestFunc fingerprints the comparison-relevant projection of a snapshot.
type DigestFunc[T any] func(T) uint64

// Resource owns the authoritative in-memory state of one dataset: the current
// snapshot, a loading flag, an optional error, and the push-channel connected
// flag for stream-backed domains. Snapshots are immutable and replaced
// wholesale; there is no incremental patching of individual records.
//
// Overlap control is caller-enforced: a caller issues a new Refresh only
// after cancelling the context of its previous one. The resource itself
// applies no de-duplication beyond last-write-wins on the snapshot.
type Resource[T any] struct {
	domain string
	fetch  FetchFunc[T]
	digest DigestFunc[T]
	size   func(T) int
	log    *slog.Logger
	meter  *metrics.Metrics

	mu         sync.RWMutex
	snapshot   T
	loading    bool
	err        error
	connected  bool
	lastDigest uint64
	hasDigest  bool
	lastChange *ChangeEvent
	onChange   []func(ChangeEvent)
	onSnapshot []func()
}

// Option configures a Resource at construction.
type Option[T any] func(*Resource[T])

// WithSize installs a snapshot cardinality function, used by the poll
// scheduler's empty-first-fetch rule and the derived loading indicator.
// Without it snapshots are treated as always non-empty.
func WithSize[T any](size func(T) int) Option[T] {
	return func(r *Resource[T]) { r.size = size }
}

// WithMetrics attaches a metrics sink.
func WithMetrics[T any](m *metrics.Metrics) Option[T] {
	return func(r *Resource[T]) { r.meter = m }
}

// NewResource builds a store for one dataset.
func NewResource[T any](domain string, fetch FetchFunc[T], digest DigestFunc[T], log *slog.Logger, opts ...Option[T]) *Resource[T] {
	r := &Resource[T]{
		domain: domain,
		fetch:  fetch,
		digest: digest,
		size:   func(T) int { return 1 },
		log:    log,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Domain returns the dataset identifier this resource serves.
func (r *Resource[T]) Domain() string { return r.domain }

// Snapshot returns the current snapshot. Callers must treat it as immutable.
func (r *Resource[T]) Snapshot() T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshot
}

// Loading reports whether a refresh is in flight.
func (r *Resource[T]) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

// Err returns the last refresh error, or nil. Cancellations never set it.
func (r *Resource[T]) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// StreamConnected reports whether the push-invalidation channel is up.
func (r *Resource[T]) StreamConnected() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.connected
}

// LastChange returns the most recent change event, or nil if none fired yet.
func (r *Resource[T]) LastChange() *ChangeEvent {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lastChange
}

// Size returns the cardinality of the current snapshot.
func (r *Resource[T]) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size(r.snapshot)
}

// Pending derives the UI loading indicator: it is true only while the
// snapshot is empty, so a layer that already has data never dims merely
// because a background refresh is in flight.
func (r *Resource[T]) Pending(enabled bool) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.size(r.snapshot) == 0 && (r.loading || enabled)
}

// OnChange registers an observer for material change events.
func (r *Resource[T]) OnChange(fn func(ChangeEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onChange = append(r.onChange, fn)
}

// OnSnapshot registers an observer invoked after every successful refresh,
// whether or not the snapshot was judged materially different. Layer
// bindings rebuild from here; change events drive notifications only.
func (r *Resource[T]) OnSnapshot(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSnapshot = append(r.onSnapshot, fn)
}

// Refresh issues one fetch and commits its outcome.
//
// Success replaces the snapshot and clears the error; a change event is
// emitted only when a previous digest exists and differs, so the very first
// successful fetch is always silent. Cancellation (the caller's context is
// done) leaves snapshot and error untouched. Any other failure, including a
// network timeout inside the fetch, keeps the stale snapshot visible and
// records a generic domain error. The loading flag is cleared on every path.
func (r *Resource[T]) Refresh(ctx context.Context) error {
	r.mu.Lock()
	r.loading = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.loading = false
		r.mu.Unlock()
	}()

	snap, err := r.fetch(ctx)
	if err != nil {
		// Cancellation means the caller's own token is done. A timeout inside
		// the fetch (HTTP client deadline against a hung upstream) also wraps
		// context errors, so the error chain alone cannot distinguish the two;
		// that case is an ordinary failure and must surface as one.
		if ctx.Err() != nil {
			r.meter.ObserveRefresh(r.domain, "cancelled")
			return err
		}
		r.log.Warn("refresh failed", "domain", r.domain, "error", err)
		r.meter.ObserveRefresh(r.domain, "error")
		r.mu.Lock()
		r.err = fmt.Errorf("%s data temporarily unavailable", r.domain)
		r.mu.Unlock()
		return err
	}

	digest := r.digest(snap)

	r.mu.Lock()
	var event *ChangeEvent
	if r.hasDigest && digest != r.lastDigest {
		event = &ChangeEvent{
			Domain:    r.domain,
			Timestamp: time.Now(),
			Meta:      map[string]string{"records": fmt.Sprint(r.size(snap))},
		}
		r.lastChange = event
	}
	r.snapshot = snap
	r.lastDigest = digest
	r.hasDigest = true
	r.err = nil
	changeSubs := slices.Clone(r.onChange)
	snapSubs := slices.Clone(r.onSnapshot)
	r.mu.Unlock()

	r.meter.ObserveRefresh(r.domain, "success")
	if event != nil {
		r.meter.IncrementChangeEvents(r.domain)
		for _, fn := range changeSubs {
			fn(*event)
		}
	}
	for _, fn := range snapSubs {
		fn()
	}
	return nil
}

// setConnected flips the push-channel flag; used by the push runner.
func (r *Resource[T]) setConnected(up bool) {
	r.mu.Lock()
	r.connected = up
	r.mu.Unlock()
	r.meter.SetStreamConnected(r.domain, up)
}
