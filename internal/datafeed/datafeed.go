// Package datafeed instantiates one store per dataset and drives them with
// their refresh strategies: push-invalidation for risk, fixed-interval
// polling for advisory, hotspot, price and track data, and a single manual
// fetch for static facilities.
package datafeed

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"georisk/internal/backend"
	"georisk/internal/domain"
	"georisk/internal/platform/metrics"
	"georisk/internal/stream"
)

// Feeds bundles every domain store. Stores are process-scoped: created at
// application start, torn down never.
type Feeds struct {
	Risk     *stream.Resource[[]domain.RiskPoint]
	Advisory *stream.Resource[[]domain.Advisory]
	Hotspot  *stream.Resource[[]domain.Hotspot]
	Price    *stream.Resource[domain.PriceBoard]
	Facility *stream.Resource[[]domain.Facility]
	Track    *stream.Resource[[]domain.Track]

	runners []func(ctx context.Context) error
}

// Options carries the knobs shared by every feed.
type Options struct {
	PollInterval   time.Duration
	ReconnectDelay time.Duration
	FacilityCodes  []string
}

func sliceSize[T any](s []T) int { return len(s) }

func add[T any](f *Feeds, res *stream.Resource[T], strategy stream.Strategy) {
	runner := stream.NewRunner(res, strategy)
	f.runners = append(f.runners, runner.Run)
}

// New builds every store against the two upstream clients.
func New(risk *backend.Client, agent *backend.Client, opts Options, log *slog.Logger, meter *metrics.Metrics) *Feeds {
	f := &Feeds{}

	f.Risk = stream.NewResource(string(domain.KindRisk),
		risk.RiskPoints, domain.RiskDigest, log,
		stream.WithSize[[]domain.RiskPoint](sliceSize[domain.RiskPoint]),
		stream.WithMetrics[[]domain.RiskPoint](meter),
	)
	riskEvents := stream.NewListener(string(domain.KindRisk),
		risk.EventsURL("/api/risk/events"), nil, opts.ReconnectDelay, log, meter)
	add(f, f.Risk, stream.PushInvalidated{Listener: riskEvents, ReconnectDelay: opts.ReconnectDelay})

	f.Advisory = stream.NewResource(string(domain.KindAdvisory),
		risk.TravelAdvisories, domain.AdvisoryDigest, log,
		stream.WithSize[[]domain.Advisory](sliceSize[domain.Advisory]),
		stream.WithMetrics[[]domain.Advisory](meter),
	)
	add(f, f.Advisory, stream.Polling{Interval: opts.PollInterval})

	f.Hotspot = stream.NewResource(string(domain.KindHotspot),
		risk.Hotspots, domain.HotspotDigest, log,
		stream.WithSize[[]domain.Hotspot](sliceSize[domain.Hotspot]),
		stream.WithMetrics[[]domain.Hotspot](meter),
	)
	add(f, f.Hotspot, stream.Polling{Interval: opts.PollInterval})

	f.Price = stream.NewResource(string(domain.KindPrice),
		risk.Prices, domain.PriceDigest, log,
		stream.WithSize[domain.PriceBoard](domain.PriceSize),
		stream.WithMetrics[domain.PriceBoard](meter),
	)
	add(f, f.Price, stream.Polling{Interval: opts.PollInterval})

	codes := opts.FacilityCodes
	f.Facility = stream.NewResource(string(domain.KindFacility),
		func(ctx context.Context) ([]domain.Facility, error) {
			return risk.Facilities(ctx, codes)
		},
		domain.FacilityDigest, log,
		stream.WithSize[[]domain.Facility](sliceSize[domain.Facility]),
		stream.WithMetrics[[]domain.Facility](meter),
	)
	add(f, f.Facility, stream.Manual{})

	f.Track = stream.NewResource(string(domain.KindTrack),
		agent.Tracks, domain.TrackDigest, log,
		stream.WithSize[[]domain.Track](sliceSize[domain.Track]),
		stream.WithMetrics[[]domain.Track](meter),
	)
	add(f, f.Track, stream.Polling{Interval: opts.PollInterval})

	return f
}

// Run drives every feed until the context is cancelled.
func (f *Feeds) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, run := range f.runners {
		g.Go(func() error {
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	return g.Wait()
}
