package feed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/transitlab/stopgraph/internal/logging"
)

// Import replaces the cached tables with the given ones in a single
// transaction, keeping row order.
func (s *Store) Import(ctx context.Context, tables *Tables) error {
	logger := logging.FromContext(ctx)
	startTime := time.Now()

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer logging.SafeRollbackWithLogging(tx, logger, "feed_import")

	for _, table := range []string{"stops", "stop_times", "trips", "routes"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("error clearing %s: %w", table, err)
		}
	}

	if err := insertStops(ctx, tx, tables.Stops); err != nil {
		return err
	}
	if err := insertRoutes(ctx, tx, tables.Routes); err != nil {
		return err
	}
	if err := insertTrips(ctx, tx, tables.Trips); err != nil {
		return err
	}
	if err := insertStopTimes(ctx, tx, tables.StopTimes, tables.StopTimesHavePickupType); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	logging.LogOperation(logger, "feed_imported",
		slog.String("db_path", s.config.DBPath),
		slog.Int("stops_count", len(tables.Stops)),
		slog.Int("stop_times_count", len(tables.StopTimes)),
		slog.Int("trips_count", len(tables.Trips)),
		slog.Int("routes_count", len(tables.Routes)),
		slog.Duration("duration", time.Since(startTime)))

	return nil
}

func insertStops(ctx context.Context, tx *sql.Tx, stops []Stop) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stops (stop_id, stop_name, stop_lat, stop_lon) VALUES (?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer stmt.Close() // nolint:errcheck

	for _, stop := range stops {
		if _, err := stmt.ExecContext(ctx, stop.ID, stop.Name, stop.Lat, stop.Lon); err != nil {
			return fmt.Errorf("error inserting stop: %w", err)
		}
	}
	return nil
}

func insertRoutes(ctx context.Context, tx *sql.Tx, routes []Route) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO routes (route_id, route_short_name, route_long_name) VALUES (?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer stmt.Close() // nolint:errcheck

	for _, route := range routes {
		if _, err := stmt.ExecContext(ctx, route.ID, route.ShortName, route.LongName); err != nil {
			return fmt.Errorf("error inserting route: %w", err)
		}
	}
	return nil
}

func insertTrips(ctx context.Context, tx *sql.Tx, trips []Trip) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trips (trip_id, route_id, pickup_type) VALUES (?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer stmt.Close() // nolint:errcheck

	for _, trip := range trips {
		if _, err := stmt.ExecContext(ctx, trip.ID, trip.RouteID, trip.PickupType); err != nil {
			return fmt.Errorf("error inserting trip: %w", err)
		}
	}
	return nil
}

func insertStopTimes(ctx context.Context, tx *sql.Tx, stopTimes []StopTime, withPickupType bool) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO stop_times (
			trip_id, stop_id, stop_sequence, arrival_time, pickup_type
		) VALUES (?, ?, ?, ?, ?);
	`)
	if err != nil {
		return fmt.Errorf("error preparing statement: %w", err)
	}
	defer stmt.Close() // nolint:errcheck

	for _, st := range stopTimes {
		pickupType := sql.NullString{String: st.PickupType, Valid: withPickupType}
		_, err := stmt.ExecContext(ctx,
			st.TripID, st.StopID, st.StopSequence, st.ArrivalTime, pickupType,
		)
		if err != nil {
			return fmt.Errorf("error inserting stop_time: %w", err)
		}
	}
	return nil
}
