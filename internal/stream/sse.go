package stream

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"georisk/internal/platform/metrics"
)

// Listener consumes a long-lived text/event-stream endpoint. It is a
// process-scoped resource: Listen is idempotent (a second call while one is
// active is a no-op), and on stream error it closes the connection and
// reconnects after a fixed delay with at most one reconnect pending.
type Listener struct {
	domain         string
	url            string
	client         *http.Client
	reconnectDelay time.Duration
	log            *slog.Logger
	meter          *metrics.Metrics

	mu     sync.Mutex
	active bool
}

// ListenerHooks are the callbacks invoked from the stream loop. OnUp fires
// once per established connection, OnMessage per inbound event payload,
// OnDown when an established connection drops.
type ListenerHooks struct {
	OnUp      func()
	OnMessage func(data string)
	OnDown    func()
}

// NewListener builds a push-channel listener for one domain.
func NewListener(domain, url string, client *http.Client, reconnectDelay time.Duration, log *slog.Logger, meter *metrics.Metrics) *Listener {
	if client == nil {
		client = http.DefaultClient
	}
	return &Listener{
		domain:         domain,
		url:            url,
		client:         client,
		reconnectDelay: reconnectDelay,
		log:            log,
		meter:          meter,
	}
}

// Listen blocks, maintaining the subscription until the context is
// cancelled. Returns immediately if a Listen for this listener is already
// running.
func (l *Listener) Listen(ctx context.Context, hooks ListenerHooks) error {
	l.mu.Lock()
	if l.active {
		l.mu.Unlock()
		return nil
	}
	l.active = true
	l.mu.Unlock()
	defer func() {
		l.mu.Lock()
		l.active = false
		l.mu.Unlock()
	}()

	for {
		err := l.stream(ctx, hooks)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.log.Warn("push channel dropped", "domain", l.domain, "url", l.url, "error", err)
		l.meter.IncrementStreamReconnects(l.domain)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.reconnectDelay):
		}
	}
}

// stream opens one connection and pumps events until it breaks.
func (l *Listener) stream(ctx context.Context, hooks ListenerHooks) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("connect stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("stream status %d", resp.StatusCode)
	}

	if hooks.OnUp != nil {
		hooks.OnUp()
	}
	defer func() {
		if hooks.OnDown != nil {
			hooks.OnDown()
		}
	}()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		data, ok := strings.CutPrefix(line, "data:")
		if !ok {
			// Comments, event names and blank keep-alive lines are skipped.
			continue
		}
		if hooks.OnMessage != nil {
			hooks.OnMessage(strings.TrimSpace(data))
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return io.EOF
}
