package app

import (
	"log/slog"

	"github.com/transitlab/stopgraph/internal/appconf"
	"github.com/transitlab/stopgraph/internal/layered"
)

// Application holds the dependencies for our HTTP handlers, helpers,
// and middleware: the run configuration, the logger and the layered graphs
// of the last completed build.
type Application struct {
	Config  appconf.Config
	Logger  *slog.Logger
	BuildID string
	Layers  layered.Collection
}
