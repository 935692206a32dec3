// Package service provides business logic for the application.
package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skyfeed/aggregator/internal/metrics"
	"github.com/skyfeed/aggregator/internal/model"
)

// Upstreams fetches each piece of the aggregate from its third-party API.
type Upstreams interface {
	FetchISS(ctx context.Context) (model.ISSPosition, error)
	FetchLatestLaunch(ctx context.Context) (model.Launch, error)
	FetchCatFact(ctx context.Context) (string, error)
	FetchEURUSD(ctx context.Context) (float64, error)
}

// Aggregator fans out to every upstream and joins the results.
type Aggregator struct {
	upstreams Upstreams
	logger    *slog.Logger
	metrics   metrics.Recorder
}

// NewAggregator creates a new Aggregator.
func NewAggregator(upstreams Upstreams, logger *slog.Logger, recorder metrics.Recorder) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Aggregator{
		upstreams: upstreams,
		logger:    logger,
		metrics:   recorder,
	}
}

// Aggregate queries all upstreams concurrently and waits for every call to settle.
// A failed call contributes its default value, so Aggregate never fails.
func (a *Aggregator) Aggregate(ctx context.Context) model.AggregateResult {
	start := time.Now()
	a.metrics.IncAggregateRequest()
	defer func() {
		a.metrics.ObserveAggregateDuration(time.Since(start))
	}()

	var result model.AggregateResult

	// Each goroutine owns exactly one field of result.
	var g errgroup.Group
	g.Go(func() error {
		result.ISS = fetch(ctx, a, model.SourceISS, a.upstreams.FetchISS, model.DefaultISSPosition())
		return nil
	})
	g.Go(func() error {
		result.SpaceX = fetch(ctx, a, model.SourceSpaceX, a.upstreams.FetchLatestLaunch, model.DefaultLaunch())
		return nil
	})
	g.Go(func() error {
		result.CatFact = fetch(ctx, a, model.SourceCatFact, a.upstreams.FetchCatFact, model.DefaultCatFact)
		return nil
	})
	g.Go(func() error {
		result.EURUSD = fetch(ctx, a, model.SourceEURUSD, a.upstreams.FetchEURUSD, 0)
		return nil
	})
	_ = g.Wait()

	return result
}

// fetch runs one upstream call, substituting fallback on error.
func fetch[T any](ctx context.Context, a *Aggregator, source string, call func(context.Context) (T, error), fallback T) (v T) {
	start := time.Now()
	outcome := metrics.OutcomeSuccess

	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("upstream fetch panicked",
				slog.String("source", source),
				slog.Any("panic", r),
			)
			outcome = metrics.OutcomeDefaulted
			v = fallback
		}
		a.metrics.ObserveUpstreamFetch(source, outcome, time.Since(start))
	}()

	v, err := call(ctx)
	if err != nil {
		outcome = metrics.OutcomeDefaulted
		a.logger.WarnContext(ctx, "upstream fetch failed",
			slog.String("source", source),
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)),
		)
		return fallback
	}

	a.logger.DebugContext(ctx, "upstream fetch succeeded",
		slog.String("source", source),
		slog.Duration("elapsed", time.Since(start)),
	)
	return v
}
