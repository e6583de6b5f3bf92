// Package source fetches the price and salary blobs and decodes them into
// grids.
package source

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/housing-affordability-etl/internal/domain"
)

// Source names used in logs and metric labels.
const (
	NamePrice  = "price"
	NameSalary = "salary"
)

// Loader loads both source grids of a refresh.
// It implements pipeline.GridSource.
type Loader struct {
	fetcher Fetcher
	opts    Options
	price   string
	salary  string
	logger  *slog.Logger
}

// NewLoader creates a Loader for the given price and salary locations.
func NewLoader(fetcher Fetcher, priceLocation, salaryLocation string, opts Options, logger *slog.Logger) *Loader {
	return &Loader{
		fetcher: fetcher,
		opts:    opts,
		price:   priceLocation,
		salary:  salaryLocation,
		logger:  logger,
	}
}

// LoadGrids fetches and decodes both sources concurrently. It succeeds only
// if both do; the first failure cancels the other fetch.
func (l *Loader) LoadGrids(ctx context.Context) (domain.GridPair, error) {
	var pair domain.GridPair

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		grid, err := l.load(gctx, NamePrice, l.price)
		pair.Price = grid
		return err
	})
	g.Go(func() error {
		grid, err := l.load(gctx, NameSalary, l.salary)
		pair.Salary = grid
		return err
	})

	if err := g.Wait(); err != nil {
		return domain.GridPair{}, err
	}
	return pair, nil
}

func (l *Loader) load(ctx context.Context, name, location string) (domain.Grid, error) {
	data, err := l.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("fetch %s source: %w", name, err)
	}
	grid, err := Decode(data, l.opts)
	if err != nil {
		return nil, fmt.Errorf("decode %s source: %w", name, err)
	}
	l.logger.Debug("source loaded", "source", name, "location", location, "bytes", len(data), "rows", len(grid))
	return grid, nil
}
