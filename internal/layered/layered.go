// Package layered converts a static transit feed into one stop graph per
// pickup type.
package layered

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/transitlab/stopgraph/internal/feed"
	"github.com/transitlab/stopgraph/internal/logging"
	"github.com/transitlab/stopgraph/internal/schedule"
)

// Options tune a build. The zero value builds the whole feed on one
// goroutine.
type Options struct {
	// RowLimit keeps only the first RowLimit joined rows; 0 means all.
	RowLimit int
	// Workers builds partitions concurrently when greater than 1.
	Workers int
}

// BuildLayeredGraphs loads the feed at datasetPath and builds its layered
// graphs. Nothing is returned alongside an error.
func BuildLayeredGraphs(ctx context.Context, datasetPath string, opts Options) (Collection, error) {
	ctx = WithBuild(ctx)

	tables, err := feed.Open(ctx, datasetPath)
	if err != nil {
		return nil, fmt.Errorf("error loading feed: %w", err)
	}

	return Build(ctx, tables, opts)
}

// Build joins the tables and builds one graph per pickup type.
func Build(ctx context.Context, tables *feed.Tables, opts Options) (Collection, error) {
	if opts.RowLimit < 0 {
		return nil, fmt.Errorf("row limit must not be negative, got %d", opts.RowLimit)
	}
	ctx = WithBuild(ctx)
	logger := logging.FromContext(ctx)

	startTime := time.Now()
	visits, err := schedule.Join(tables, opts.RowLimit)
	if err != nil {
		logging.LogError(logger, "failed to join stop visits", err)
		return nil, fmt.Errorf("error joining stop visits: %w", err)
	}
	logging.LogOperation(logger, "stop_visits_joined",
		slog.Int("visits_count", len(visits)),
		slog.Int("row_limit", opts.RowLimit),
		slog.Duration("duration", time.Since(startTime)))

	startTime = time.Now()
	collection := BuildGraphs(nil, visits, tables.Stops, opts.Workers)

	nodes, edges := 0, 0
	for _, layer := range collection {
		nodes += layer.Graph.NodeCount()
		edges += layer.Graph.EdgeCount()
	}
	logging.LogOperation(logger, "layered_graphs_built",
		slog.Int("layers_count", len(collection)),
		slog.Int("nodes_count", nodes),
		slog.Int("edges_count", edges),
		slog.Int("workers", opts.Workers),
		slog.Duration("duration", time.Since(startTime)))

	return collection, nil
}

// WithBuild tags ctx and its logger with a fresh build ID unless ctx
// already carries one.
func WithBuild(ctx context.Context) context.Context {
	if _, ok := ctx.Value(buildIDKey{}).(string); ok {
		return ctx
	}
	id := uuid.New().String()
	ctx = context.WithValue(ctx, buildIDKey{}, id)
	return logging.WithLogger(ctx, logging.FromContext(ctx).With(slog.String("build_id", id)))
}

type buildIDKey struct{}

// BuildID returns the ID a build attached to ctx, if any.
func BuildID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(buildIDKey{}).(string)
	return id, ok
}
