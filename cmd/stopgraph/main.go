package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/transitlab/stopgraph/internal/app"
	"github.com/transitlab/stopgraph/internal/appconf"
	"github.com/transitlab/stopgraph/internal/feed"
	"github.com/transitlab/stopgraph/internal/layered"
	"github.com/transitlab/stopgraph/internal/logging"
	"github.com/transitlab/stopgraph/internal/restapi"
)

func main() {
	// .env is optional; values already in the environment win
	_ = godotenv.Load()

	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err) // nolint:errcheck
		os.Exit(2)
	}

	logger := logging.NewStructuredLogger(os.Stdout, cfg.SlogLevel())
	slog.SetDefault(logger)

	application, err := run(context.Background(), cfg, logger, os.Stdout)
	if err != nil {
		logging.LogError(logger, "failed to build layered graphs", err)
		os.Exit(1)
	}

	if !cfg.Server.Enabled {
		return
	}

	api := restapi.NewRestAPI(application)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      api.Handler(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	logger.Info("starting server", "addr", srv.Addr, "env", cfg.Env)
	err = srv.ListenAndServe()
	api.Close()
	logger.Error(err.Error())
	os.Exit(1)
}

// loadConfig layers configuration: defaults, then the -config file, then
// STOPGRAPH_* environment variables, then any flags given explicitly.
func loadConfig(args []string) (appconf.Config, error) {
	fs := flag.NewFlagSet("stopgraph", flag.ContinueOnError)

	var (
		configPath string
		flagCfg    appconf.Config
	)
	fs.StringVar(&configPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&flagCfg.DatasetPath, "dataset", "", "Feed directory, GTFS .zip or cached .db")
	fs.IntVar(&flagCfg.RowLimit, "rows", 0, "Keep only the first N joined stop time rows (0 = all)")
	fs.IntVar(&flagCfg.Workers, "workers", 0, "Build pickup type layers on N goroutines")
	fs.StringVar(&flagCfg.ImportDB, "import-db", "", "Also write the loaded feed to this SQLite cache")
	fs.StringVar(&flagCfg.Env, "env", "", "Environment (development|test|production)")
	fs.StringVar(&flagCfg.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")
	fs.BoolVar(&flagCfg.Server.Enabled, "serve", false, "Serve the built graphs over HTTP")
	fs.IntVar(&flagCfg.Server.Port, "port", 0, "API server port")
	fs.IntVar(&flagCfg.Server.RateLimit, "rate-limit", 0, "API requests per second per client (0 = unlimited)")
	if err := fs.Parse(args); err != nil {
		return appconf.Config{}, err
	}

	cfg := appconf.Default()
	if configPath != "" {
		var err error
		if cfg, err = appconf.Load(configPath); err != nil {
			return appconf.Config{}, err
		}
	}
	if err := cfg.ApplyEnv(); err != nil {
		return appconf.Config{}, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "dataset":
			cfg.DatasetPath = flagCfg.DatasetPath
		case "rows":
			cfg.RowLimit = flagCfg.RowLimit
		case "workers":
			cfg.Workers = flagCfg.Workers
		case "import-db":
			cfg.ImportDB = flagCfg.ImportDB
		case "env":
			cfg.Env = flagCfg.Env
		case "log-level":
			cfg.LogLevel = flagCfg.LogLevel
		case "serve":
			cfg.Server.Enabled = flagCfg.Server.Enabled
		case "port":
			cfg.Server.Port = flagCfg.Server.Port
		case "rate-limit":
			cfg.Server.RateLimit = flagCfg.Server.RateLimit
		}
	})

	if err := cfg.Validate(); err != nil {
		return appconf.Config{}, err
	}
	return cfg, nil
}

// run performs one build and prints its statistics to out.
func run(ctx context.Context, cfg appconf.Config, logger *slog.Logger, out io.Writer) (*app.Application, error) {
	ctx = layered.WithBuild(logging.WithLogger(ctx, logger))
	buildID, _ := layered.BuildID(ctx)

	opts := layered.Options{
		RowLimit: cfg.RowLimit,
		Workers:  cfg.Workers,
	}

	var (
		layers layered.Collection
		err    error
	)
	if cfg.ImportDB != "" {
		layers, err = importAndBuild(ctx, cfg, opts)
	} else {
		layers, err = layered.BuildLayeredGraphs(ctx, cfg.DatasetPath, opts)
	}
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(out, "Source: %s\n", cfg.DatasetPath) // nolint:errcheck
	fmt.Fprintf(out, "Build: %s\n", buildID)          // nolint:errcheck
	layered.PrintStatistics(out, layers)

	return &app.Application{
		Config:  cfg,
		Logger:  logger,
		BuildID: buildID,
		Layers:  layers,
	}, nil
}

func importAndBuild(ctx context.Context, cfg appconf.Config, opts layered.Options) (layered.Collection, error) {
	tables, err := feed.Open(ctx, cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("error loading feed: %w", err)
	}

	store, err := feed.NewStore(feed.StoreConfig{DBPath: cfg.ImportDB, Env: cfg.Environment()})
	if err != nil {
		return nil, fmt.Errorf("error opening feed cache: %w", err)
	}
	defer logging.SafeCloseWithLogging(store, logging.FromContext(ctx), "close feed cache")

	if err := store.Import(ctx, tables); err != nil {
		return nil, fmt.Errorf("error importing feed: %w", err)
	}

	return layered.Build(ctx, tables, opts)
}
