package schedule

import (
	"fmt"

	"github.com/transitlab/stopgraph/internal/feed"
)

// StopVisit is one joined (stop, trip, route) row.
type StopVisit struct {
	StopID             int64
	TripID             string
	RouteID            string
	PickupType         string
	StopSequence       int
	ArrivalTime        string
	ArrivalTimeSeconds int64
}

// Join inner-joins stop times with trips on trip_id and the result with
// routes on route_id, keeping stop time order. Rows without a matching trip
// or route are dropped. A positive rowLimit truncates the joined rows before
// arrival times are converted, which can cut a trip short. Any malformed
// arrival time among the surviving rows fails the whole join.
//
// The pickup type comes from stop_times.txt when that table has the column,
// even where a row leaves it blank, and from trips.txt otherwise.
func Join(tables *feed.Tables, rowLimit int) ([]StopVisit, error) {
	if rowLimit < 0 {
		return nil, fmt.Errorf("row limit must not be negative, got %d", rowLimit)
	}

	tripsByID := make(map[string]*feed.Trip, len(tables.Trips))
	for i := range tables.Trips {
		if _, ok := tripsByID[tables.Trips[i].ID]; !ok {
			tripsByID[tables.Trips[i].ID] = &tables.Trips[i]
		}
	}

	routeIDs := make(map[string]bool, len(tables.Routes))
	for _, route := range tables.Routes {
		routeIDs[route.ID] = true
	}

	var visits []StopVisit
	for _, st := range tables.StopTimes {
		if rowLimit != 0 && len(visits) == rowLimit {
			break
		}

		trip, ok := tripsByID[st.TripID]
		if !ok || !routeIDs[trip.RouteID] {
			continue
		}

		pickupType := trip.PickupType
		if tables.StopTimesHavePickupType {
			pickupType = st.PickupType
		}

		visits = append(visits, StopVisit{
			StopID:       st.StopID,
			TripID:       st.TripID,
			RouteID:      trip.RouteID,
			PickupType:   pickupType,
			StopSequence: st.StopSequence,
			ArrivalTime:  st.ArrivalTime,
		})
	}

	for i := range visits {
		seconds, err := TimeToSeconds(visits[i].ArrivalTime)
		if err != nil {
			return nil, fmt.Errorf("trip %s stop %d: %w", visits[i].TripID, visits[i].StopID, err)
		}
		visits[i].ArrivalTimeSeconds = seconds
	}

	return visits, nil
}
