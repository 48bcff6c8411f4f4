package feed

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/transitlab/stopgraph/internal/logging"
)

// Load reads every cached table back in the order it was imported.
func (s *Store) Load(ctx context.Context) (*Tables, error) {
	tables := &Tables{}
	var err error

	if tables.Stops, err = queryRows(ctx, s.DB, "stops",
		"SELECT stop_id, stop_name, stop_lat, stop_lon FROM stops ORDER BY rowid",
		func(rows *sql.Rows) (Stop, error) {
			var stop Stop
			err := rows.Scan(&stop.ID, &stop.Name, &stop.Lat, &stop.Lon)
			return stop, err
		}); err != nil {
		return nil, err
	}

	if tables.StopTimes, err = queryRows(ctx, s.DB, "stop_times",
		"SELECT trip_id, stop_id, stop_sequence, arrival_time, pickup_type FROM stop_times ORDER BY rowid",
		func(rows *sql.Rows) (StopTime, error) {
			var st StopTime
			var pickupType sql.NullString
			err := rows.Scan(&st.TripID, &st.StopID, &st.StopSequence, &st.ArrivalTime, &pickupType)
			st.PickupType = pickupType.String
			if pickupType.Valid {
				tables.StopTimesHavePickupType = true
			}
			return st, err
		}); err != nil {
		return nil, err
	}

	if tables.Trips, err = queryRows(ctx, s.DB, "trips",
		"SELECT trip_id, route_id, pickup_type FROM trips ORDER BY rowid",
		func(rows *sql.Rows) (Trip, error) {
			var trip Trip
			err := rows.Scan(&trip.ID, &trip.RouteID, &trip.PickupType)
			return trip, err
		}); err != nil {
		return nil, err
	}

	if tables.Routes, err = queryRows(ctx, s.DB, "routes",
		"SELECT route_id, route_short_name, route_long_name FROM routes ORDER BY rowid",
		func(rows *sql.Rows) (Route, error) {
			var route Route
			err := rows.Scan(&route.ID, &route.ShortName, &route.LongName)
			return route, err
		}); err != nil {
		return nil, err
	}

	return tables, nil
}

func queryRows[T any](ctx context.Context, db *sql.DB, table, query string, scan func(*sql.Rows) (T, error)) ([]T, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %w", table, err)
	}
	defer logging.SafeCloseWithLogging(rows, logging.FromContext(ctx), "query "+table)

	var result []T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", table, err)
		}
		result = append(result, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s: %w", table, err)
	}

	logging.FromContext(ctx).Debug("cached table loaded", slog.String("table", table), slog.Int("rows", len(result)))
	return result, nil
}
