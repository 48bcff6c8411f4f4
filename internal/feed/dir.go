package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/jamespfennell/gtfs/constants"
	"github.com/jamespfennell/gtfs/csv"

	"github.com/transitlab/stopgraph/internal/logging"
)

const (
	stopsFile     constants.StaticFile = "stops.txt"
	stopTimesFile constants.StaticFile = "stop_times.txt"
	tripsFile     constants.StaticFile = "trips.txt"
	routesFile    constants.StaticFile = "routes.txt"
)

// tableOpener opens one table of a feed. A feed without the table yields an
// error wrapping ErrMissingTable.
type tableOpener func(name constants.StaticFile) (io.ReadCloser, error)

// LoadDir reads stops.txt, stop_times.txt, trips.txt and routes.txt from a
// directory of loose GTFS tables.
func LoadDir(ctx context.Context, dir string) (*Tables, error) {
	return loadTables(ctx, func(name constants.StaticFile) (io.ReadCloser, error) {
		content, err := os.Open(filepath.Join(dir, string(name)))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingTable, name)
		}
		if err != nil {
			return nil, fmt.Errorf("error opening %s: %w", name, err)
		}
		return content, nil
	})
}

// loadTables parses the four tables in file order, whatever holds them.
func loadTables(ctx context.Context, open tableOpener) (*Tables, error) {
	tables := &Tables{}

	for _, table := range []struct {
		file  constants.StaticFile
		parse func(f *csv.File) error
	}{
		{
			file: stopsFile,
			parse: func(f *csv.File) (err error) {
				tables.Stops, err = parseStops(f)
				return
			},
		},
		{
			file: stopTimesFile,
			parse: func(f *csv.File) (err error) {
				tables.StopTimes, err = parseStopTimes(f)
				tables.StopTimesHavePickupType = slices.Contains(f.HeaderContent(), "pickup_type")
				return
			},
		},
		{
			file: tripsFile,
			parse: func(f *csv.File) (err error) {
				tables.Trips, err = parseTrips(f)
				return
			},
		},
		{
			file: routesFile,
			parse: func(f *csv.File) (err error) {
				tables.Routes, err = parseRoutes(f)
				return
			},
		},
	} {
		if err := readTable(ctx, table.file, open, table.parse); err != nil {
			return nil, err
		}
	}

	return tables, nil
}

func readTable(ctx context.Context, name constants.StaticFile, open tableOpener, parse func(f *csv.File) error) (err error) {
	content, err := open(name)
	if err != nil {
		return err
	}

	// csv.New closes content when it fails
	file, err := csv.New(name, content)
	if err != nil {
		return fmt.Errorf("error reading %s: %w", name, err)
	}
	defer logging.HandleDeferredError(&err, file.Close, logging.FromContext(ctx), "read "+string(name))

	return parse(file)
}

func parseStops(f *csv.File) ([]Stop, error) {
	idColumn := f.RequiredColumn("stop_id")
	nameColumn := f.RequiredColumn("stop_name")
	latColumn := f.RequiredColumn("stop_lat")
	lonColumn := f.RequiredColumn("stop_lon")
	if missing := f.MissingRequiredColumns(); missing != nil {
		return nil, fmt.Errorf("%s: %w: %v", stopsFile, ErrMissingColumn, missing)
	}

	var stops []Stop
	for row := 1; f.NextRow(); row++ {
		id, err := parseID(stopsFile, row, "stop_id", idColumn.Read())
		if err != nil {
			return nil, err
		}
		lat, err := parseCoordinate(stopsFile, row, "stop_lat", latColumn.Read())
		if err != nil {
			return nil, err
		}
		lon, err := parseCoordinate(stopsFile, row, "stop_lon", lonColumn.Read())
		if err != nil {
			return nil, err
		}

		stops = append(stops, Stop{
			ID:   id,
			Lon:  lon,
			Lat:  lat,
			Name: nameColumn.Read(),
		})
	}

	return stops, nil
}

func parseStopTimes(f *csv.File) ([]StopTime, error) {
	tripIDColumn := f.RequiredColumn("trip_id")
	stopIDColumn := f.RequiredColumn("stop_id")
	stopSequenceColumn := f.RequiredColumn("stop_sequence")
	arrivalTimeColumn := f.RequiredColumn("arrival_time")
	pickupTypeColumn := f.OptionalColumn("pickup_type")
	if missing := f.MissingRequiredColumns(); missing != nil {
		return nil, fmt.Errorf("%s: %w: %v", stopTimesFile, ErrMissingColumn, missing)
	}

	var stopTimes []StopTime
	for row := 1; f.NextRow(); row++ {
		stopID, err := parseID(stopTimesFile, row, "stop_id", stopIDColumn.Read())
		if err != nil {
			return nil, err
		}
		raw := stopSequenceColumn.Read()
		stopSequence, err := strconv.Atoi(raw)
		if err != nil {
			return nil, &FieldError{Table: string(stopTimesFile), Row: row, Column: "stop_sequence", Value: raw, Err: err}
		}

		stopTimes = append(stopTimes, StopTime{
			TripID:       tripIDColumn.Read(),
			StopID:       stopID,
			StopSequence: stopSequence,
			ArrivalTime:  arrivalTimeColumn.Read(),
			PickupType:   pickupTypeColumn.Read(),
		})
	}

	return stopTimes, nil
}

func parseTrips(f *csv.File) ([]Trip, error) {
	tripIDColumn := f.RequiredColumn("trip_id")
	routeIDColumn := f.RequiredColumn("route_id")
	pickupTypeColumn := f.OptionalColumn("pickup_type")
	if missing := f.MissingRequiredColumns(); missing != nil {
		return nil, fmt.Errorf("%s: %w: %v", tripsFile, ErrMissingColumn, missing)
	}

	var trips []Trip
	for f.NextRow() {
		trips = append(trips, Trip{
			ID:         tripIDColumn.Read(),
			RouteID:    routeIDColumn.Read(),
			PickupType: pickupTypeColumn.Read(),
		})
	}

	return trips, nil
}

func parseRoutes(f *csv.File) ([]Route, error) {
	routeIDColumn := f.RequiredColumn("route_id")
	shortNameColumn := f.OptionalColumn("route_short_name")
	longNameColumn := f.OptionalColumn("route_long_name")
	if missing := f.MissingRequiredColumns(); missing != nil {
		return nil, fmt.Errorf("%s: %w: %v", routesFile, ErrMissingColumn, missing)
	}

	var routes []Route
	for f.NextRow() {
		routes = append(routes, Route{
			ID:        routeIDColumn.Read(),
			ShortName: shortNameColumn.Read(),
			LongName:  longNameColumn.Read(),
		})
	}

	return routes, nil
}

func parseID(table constants.StaticFile, row int, column, raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &FieldError{Table: string(table), Row: row, Column: column, Value: raw, Err: err}
	}
	return id, nil
}

// parseCoordinate treats a blank value as 0; GTFS leaves coordinates empty
// for some location types.
func parseCoordinate(table constants.StaticFile, row int, column, raw string) (float64, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &FieldError{Table: string(table), Row: row, Column: column, Value: raw, Err: err}
	}
	return v, nil
}
