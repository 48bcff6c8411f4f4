package feed

// Stop represents a transit stop in the feed
type Stop struct {
	ID   int64   // stop_id
	Lon  float64 // stop_lon
	Lat  float64 // stop_lat
	Name string  // stop_name
}

// StopTime represents one scheduled visit of a trip to a stop
type StopTime struct {
	TripID       string // trip_id
	StopID       int64  // stop_id
	StopSequence int    // stop_sequence
	ArrivalTime  string // arrival_time (H:MM:SS, hours may exceed 23)
	PickupType   string // pickup_type, empty when the column is absent or blank
}

// Trip represents a journey made by a vehicle in the feed
type Trip struct {
	ID         string // trip_id
	RouteID    string // route_id
	PickupType string // pickup_type, optional in trips.txt
}

// Route represents a transit route in the feed
type Route struct {
	ID        string // route_id
	ShortName string // route_short_name
	LongName  string // route_long_name
}

// Tables holds the four tables a layered build reads. Row order is the
// order of the source file and is significant for joining and partitioning.
type Tables struct {
	Stops     []Stop
	StopTimes []StopTime
	Trips     []Trip
	Routes    []Route

	// StopTimesHavePickupType is set when stop_times.txt has a pickup_type
	// column. Its values then win over trips.txt, blanks included.
	StopTimesHavePickupType bool
}

// Counts returns the number of rows per table, keyed by table name.
func (t *Tables) Counts() map[string]int {
	return map[string]int{
		"stops":      len(t.Stops),
		"stop_times": len(t.StopTimes),
		"trips":      len(t.Trips),
		"routes":     len(t.Routes),
	}
}
