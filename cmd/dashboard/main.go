package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"georisk/internal/backend"
	"georisk/internal/datafeed"
	"georisk/internal/domain"
	"georisk/internal/geometry"
	httpapi "georisk/internal/http"
	"georisk/internal/layers"
	"georisk/internal/platform/config"
	"georisk/internal/platform/httpserver"
	"georisk/internal/platform/logger"
	"georisk/internal/platform/metrics"
	platformredis "georisk/internal/platform/redis"
	"georisk/internal/popup"
	"georisk/internal/stream"
	"georisk/internal/viewport"
)

const frameInterval = 33 * time.Millisecond

// main wires high-level dependencies and keeps the process lifecycle small.
// Data synchronization and rendering logic live in internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	meter := metrics.New()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Warn("redis unavailable, boundary cache disabled", "error", err)
	}
	var boundaryCache geometry.Cache
	if rc := geometry.NewRedisCache(redisClient, log); rc != nil {
		boundaryCache = rc
	}

	riskAPI := backend.New(cfg.RiskAPIBase, log)
	agentAPI := backend.New(cfg.AgentAPIBase, log)

	feeds := datafeed.New(riskAPI, agentAPI, datafeed.Options{
		PollInterval:   cfg.PollInterval,
		ReconnectDelay: cfg.ReconnectDelay,
		FacilityCodes:  cfg.FacilityCodes,
	}, log, meter)

	registry := layers.NewRegistry(layers.DefaultEntries())
	registry.ApplyPreset(layers.RiskView)

	surface := viewport.NewMemorySurface(1280, 800)
	ctrl := viewport.NewController(surface, viewport.DefaultCamera, log)
	defer ctrl.Destroy()

	resolver := geometry.NewResolver(cfg.BoundariesURL, boundaryCache, log, meter)
	if _, err := resolver.Boundaries(ctx); err != nil {
		// Warm-up only. The choropleth asks the resolver again on every
		// rebuild, so the layer fills in once a later resolve succeeds.
		log.Warn("boundary dataset unavailable", "error", err)
	}
	boundaries := func() *geometry.Boundaries {
		b, err := resolver.Boundaries(ctx)
		if err != nil {
			log.Warn("boundary dataset still unavailable", "error", err)
			return nil
		}
		return b
	}

	tracker := popup.NewTracker(ctrl, func(pos popup.Position) {
		log.Debug("popup moved", "x", pos.X, "y", pos.Y)
	})
	onSelect := func(sel *layers.Selection) {
		if sel == nil {
			tracker.Stop()
			return
		}
		log.Info("selection", "kind", sel.Kind, "clicked", sel.Clicked)
		if anchor, ok := selectionAnchor(sel); ok {
			tracker.Follow(anchor[0], anchor[1])
		}
	}

	bindings := []interface{ Mount() }{
		layers.NewBinding(domain.KindRisk, ctrl, feeds.Risk, registry,
			layers.RiskPrimitives, &layers.RiskPulse, onSelect, log, meter),
		layers.NewBinding(domain.KindAdvisory, ctrl, feeds.Advisory, registry,
			layers.AdvisoryPrimitives(boundaries, log), nil, onSelect, log, meter),
		layers.NewBinding(domain.KindHotspot, ctrl, feeds.Hotspot, registry,
			layers.HotspotPrimitives, &layers.HotspotPulse, onSelect, log, meter),
		layers.NewBinding(domain.KindFacility, ctrl, feeds.Facility, registry,
			layers.FacilityPrimitives, nil, onSelect, log, meter),
		layers.NewBinding(domain.KindTrack, ctrl, feeds.Track, registry,
			layers.TrackPrimitives, nil, onSelect, log, meter),
	}
	for _, b := range bindings {
		b.Mount()
	}

	actions := viewport.NewActionFeed(ctrl, stream.NewListener("map-actions",
		riskAPI.EventsURL("/api/map-actions/events"), nil, cfg.ReconnectDelay, log, meter), log)

	srv := httpserver.New(cfg.Addr, httpapi.NewRouter(httpapi.NewHandler(registry, log)))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return feeds.Run(ctx) })
	g.Go(func() error {
		err := actions.Run(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		surface.Run(ctx, frameInterval)
		return nil
	})
	g.Go(func() error {
		log.Info("starting georisk dashboard engine", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("engine stopped", "error", err)
	}
}

// selectionAnchor extracts the popup anchor from a selection payload.
func selectionAnchor(sel *layers.Selection) ([2]float64, bool) {
	switch rec := sel.Record.(type) {
	case domain.RiskPoint:
		return [2]float64{rec.Longitude, rec.Latitude}, true
	case domain.Hotspot:
		return [2]float64{rec.Longitude, rec.Latitude}, true
	case domain.Facility:
		return [2]float64{rec.Longitude, rec.Latitude}, true
	case domain.Track:
		return [2]float64{rec.Longitude, rec.Latitude}, true
	default:
		return [2]float64{}, false
	}
}
