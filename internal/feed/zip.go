package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/jamespfennell/gtfs/constants"
	"github.com/klauspost/compress/zip"

	"github.com/transitlab/stopgraph/internal/logging"
)

// LoadZip reads the same four tables as LoadDir from a GTFS zip archive,
// row for row. Tables may sit in a folder inside the archive; the first
// entry with a matching file name is used.
func LoadZip(ctx context.Context, archivePath string) (tables *Tables, err error) {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("error opening GTFS archive: %w", err)
	}
	defer logging.HandleDeferredError(&err, reader.Close, logging.FromContext(ctx), "close "+archivePath)

	entries := make(map[constants.StaticFile]*zip.File, len(reader.File))
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := constants.StaticFile(path.Base(entry.Name))
		if _, ok := entries[name]; !ok {
			entries[name] = entry
		}
	}
	logging.FromContext(ctx).Debug("gtfs archive opened",
		slog.String("source", archivePath),
		slog.Int("entries", len(entries)))

	return loadTables(ctx, zipOpener(entries))
}

func zipOpener(entries map[constants.StaticFile]*zip.File) tableOpener {
	return func(name constants.StaticFile) (io.ReadCloser, error) {
		entry, ok := entries[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingTable, name)
		}
		content, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("error opening %s: %w", name, err)
		}
		return content, nil
	}
}
