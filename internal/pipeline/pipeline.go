package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/housing-affordability-etl/internal/domain"
	"github.com/couchcryptid/housing-affordability-etl/internal/observability"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// GridSource loads the price and salary grids of one refresh, both or neither.
type GridSource interface {
	LoadGrids(ctx context.Context) (domain.GridPair, error)
}

// Transformer turns a grid pair into a dataset.
type Transformer interface {
	Transform(ctx context.Context, pair domain.GridPair) domain.Dataset
}

// BatchLoader writes a dataset's records to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, ds domain.Dataset) error
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock sets the clock driving refresh waits and durations.
func WithClock(c clockwork.Clock) Option {
	return func(p *Pipeline) { p.clock = c }
}

// Pipeline orchestrates the load-transform-publish refresh loop and holds the
// dataset currently served.
type Pipeline struct {
	source      GridSource
	transformer Transformer
	loader      BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	interval    time.Duration
	clock       clockwork.Clock

	snapshot atomic.Pointer[domain.Dataset]
	ready    atomic.Bool
}

// New creates a Pipeline. A nil loader disables publishing. A zero interval
// makes Run return after the first successful refresh.
func New(s GridSource, t Transformer, l BatchLoader, logger *slog.Logger, metrics *observability.Metrics, interval time.Duration, opts ...Option) *Pipeline {
	p := &Pipeline{
		source:      s,
		transformer: t,
		loader:      l,
		logger:      logger,
		metrics:     metrics,
		interval:    interval,
		clock:       clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CheckReadiness returns nil once a refresh has succeeded, or an error
// describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no dataset has been loaded yet")
	}
	return nil
}

// Snapshot returns the dataset currently served and whether one exists.
func (p *Pipeline) Snapshot() (domain.Dataset, bool) {
	ds := p.snapshot.Load()
	if ds == nil {
		return domain.Dataset{}, false
	}
	return *ds, true
}

// Refresh loads both sources, derives a new dataset and swaps it in. When
// loading fails the previous dataset stays served. Publishing happens after
// the swap; a publish failure is returned but does not revert it.
func (p *Pipeline) Refresh(ctx context.Context) error {
	start := p.clock.Now()

	pair, err := p.source.LoadGrids(ctx)
	if err != nil {
		p.metrics.Refreshes.WithLabelValues("source_error").Inc()
		return fmt.Errorf("load sources: %w", err)
	}

	ds := p.transformer.Transform(ctx, pair)
	p.snapshot.Store(&ds)
	p.ready.Store(true)
	p.recordDataset(ds)

	if p.loader != nil && !ds.Empty() {
		if err := p.loader.LoadBatch(ctx, ds); err != nil {
			p.metrics.Refreshes.WithLabelValues("publish_error").Inc()
			return fmt.Errorf("publish records: %w", err)
		}
		p.metrics.RecordsPublished.Add(float64(len(ds.Records)))
	}

	p.metrics.Refreshes.WithLabelValues("success").Inc()
	p.metrics.LastSuccess.Set(float64(p.clock.Now().Unix()))
	p.metrics.RefreshDuration.Observe(p.clock.Since(start).Seconds())

	p.logger.Info("refresh complete",
		"records", len(ds.Records),
		"regions", len(ds.Regions),
		"price_keys", ds.Report.PriceKeys,
		"salary_keys", ds.Report.SalaryKeys,
	)
	return nil
}

func (p *Pipeline) recordDataset(ds domain.Dataset) {
	for source, r := range map[string]domain.BuildReport{"price": ds.Report.Price, "salary": ds.Report.Salary} {
		p.metrics.RowsDropped.WithLabelValues(source, "unrecognized_region").Add(float64(len(r.UnrecognizedLabels)))
		p.metrics.CellsRejected.WithLabelValues(source).Add(float64(r.RejectedCells))
		p.metrics.ColumnsInvalid.WithLabelValues(source).Add(float64(len(r.InvalidYearColumns)))
	}
	p.metrics.RecordsDerived.Set(float64(len(ds.Records)))
	p.metrics.RegionsServed.Set(float64(len(ds.Regions)))
}

// Run refreshes, then waits for the refresh interval before the next one. A
// failed refresh is retried with exponential backoff instead. Run returns nil
// on context cancellation, or after the first success when the interval is
// zero.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "refresh_interval", p.interval)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	backoff := initialBackoff

	for {
		if ctx.Err() != nil {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}

		wait := p.interval
		if err := p.Refresh(ctx); err != nil {
			if ctx.Err() != nil {
				p.logger.Info("pipeline stopping", "reason", ctx.Err())
				return nil
			}
			p.logger.Error("refresh failed", "error", err, "retry_in", backoff)
			wait = backoff
			backoff = retry.NextBackoff(backoff, maxBackoff)
		} else {
			backoff = initialBackoff
			if p.interval == 0 {
				p.logger.Info("pipeline finished", "reason", "refresh interval is zero")
				return nil
			}
		}

		if !p.sleepWithContext(ctx, wait) {
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		}
	}
}

// sleepWithContext is retry.SleepWithContext on the pipeline's clock.
func (p *Pipeline) sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}

	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}
