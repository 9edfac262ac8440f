package geometry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"georisk/internal/platform/metrics"
)

// Cache optionally persists the raw boundary document across process
// restarts. Both methods are best-effort; errors are logged, never surfaced.
type Cache interface {
	Get(ctx context.Context) ([]byte, bool)
	Put(ctx context.Context, raw []byte)
}

// Resolver fetches the world boundary dataset exactly once per process and
// serves the parsed result to every caller. A failed fetch caches nothing,
// so the next call retries from scratch.
type Resolver struct {
	url   string
	http  *http.Client
	cache Cache
	log   *slog.Logger
	meter *metrics.Metrics

	mu   sync.Mutex
	data *Boundaries
}

// NewResolver builds a resolver around the boundary document URL. cache may
// be nil.
func NewResolver(url string, cache Cache, log *slog.Logger, meter *metrics.Metrics) *Resolver {
	return &Resolver{
		url:   url,
		http:  &http.Client{Timeout: 60 * time.Second},
		cache: cache,
		log:   log,
		meter: meter,
	}
}

// Boundaries returns the cached dataset, fetching it on first use. Safe for
// concurrent callers; only one fetch runs at a time.
func (r *Resolver) Boundaries(ctx context.Context) (*Boundaries, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.data != nil {
		return r.data, nil
	}

	raw, fromCache := r.load(ctx)
	if raw == nil {
		var err error
		raw, err = r.fetch(ctx)
		if err != nil {
			return nil, err
		}
	}

	parsed, err := parseBoundaries(raw)
	if err != nil {
		return nil, fmt.Errorf("parse boundaries: %w", err)
	}
	r.data = parsed
	if !fromCache && r.cache != nil {
		r.cache.Put(ctx, raw)
	}
	r.log.Info("boundary dataset loaded", "features", len(parsed.Features), "cached", fromCache)
	return parsed, nil
}

func (r *Resolver) load(ctx context.Context) (raw []byte, fromCache bool) {
	if r.cache == nil {
		return nil, false
	}
	raw, ok := r.cache.Get(ctx)
	return raw, ok && raw != nil
}

func (r *Resolver) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build boundaries request: %w", err)
	}
	resp, err := r.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch boundaries: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch boundaries: status %d", resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, fmt.Errorf("read boundaries: %w", err)
	}
	r.meter.IncrementBoundaryFetches()
	return raw, nil
}
