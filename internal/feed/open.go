package feed

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/transitlab/stopgraph/internal/logging"
)

// SourceKind identifies how a dataset path is read.
type SourceKind string

const (
	SourceDir    SourceKind = "dir"
	SourceZip    SourceKind = "zip"
	SourceSQLite SourceKind = "sqlite"
)

// DetectSource decides how path should be read: directories hold loose
// tables, .zip files are GTFS archives and .db/.sqlite files are caches
// written by Store.Import.
func DetectSource(path string) (SourceKind, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("error opening dataset: %w", err)
	}
	if info.IsDir() {
		return SourceDir, nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip":
		return SourceZip, nil
	case ".db", ".sqlite", ".sqlite3":
		return SourceSQLite, nil
	}
	return "", fmt.Errorf("unsupported dataset %s: expected a directory, .zip or .db file", path)
}

// Open loads the four tables from path using the source DetectSource picks.
func Open(ctx context.Context, path string) (*Tables, error) {
	kind, err := DetectSource(path)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	var tables *Tables

	switch kind {
	case SourceDir:
		tables, err = LoadDir(ctx, path)
	case SourceZip:
		tables, err = LoadZip(ctx, path)
	case SourceSQLite:
		tables, err = loadStore(ctx, path)
	}
	if err != nil {
		return nil, err
	}

	counts := tables.Counts()
	logging.LogOperation(logging.FromContext(ctx), "feed_loaded",
		slog.String("source", path),
		slog.String("kind", string(kind)),
		slog.Int("stops_count", counts["stops"]),
		slog.Int("stop_times_count", counts["stop_times"]),
		slog.Int("trips_count", counts["trips"]),
		slog.Int("routes_count", counts["routes"]),
		slog.Duration("duration", time.Since(startTime)))

	return tables, nil
}

func loadStore(ctx context.Context, path string) (tables *Tables, err error) {
	store, err := NewStore(StoreConfig{DBPath: path})
	if err != nil {
		return nil, err
	}
	defer logging.HandleDeferredError(&err, store.Close, logging.FromContext(ctx), "close feed cache")

	return store.Load(ctx)
}
