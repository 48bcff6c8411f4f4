package layered

import (
	"sort"
	"sync"

	"github.com/transitlab/stopgraph/internal/feed"
	"github.com/transitlab/stopgraph/internal/graph"
	"github.com/transitlab/stopgraph/internal/schedule"
)

// Layer is the graph built from every trip sharing one pickup type.
type Layer struct {
	PickupType string
	Graph      *graph.Graph
}

// Collection is the ordered output of a build, one layer per distinct pickup
// type in order of first appearance in the joined rows.
type Collection []Layer

// Graphs returns the layer graphs in collection order.
func (c Collection) Graphs() []*graph.Graph {
	graphs := make([]*graph.Graph, len(c))
	for i, layer := range c {
		graphs[i] = layer.Graph
	}
	return graphs
}

// BuildGraphs turns joined stop visits into one graph per pickup type and
// appends them to dst. Each trip becomes a path through its stops ordered by
// stop sequence; when trips share a stop pair the last trip processed wins.
// Stops missing from the stops table still become edge endpoints, just
// without attributes.
//
// With workers > 1 the partitions are built concurrently; output order is
// unaffected.
func BuildGraphs(dst Collection, visits []schedule.StopVisit, stops []feed.Stop, workers int) Collection {
	stopsByID := make(map[int64]feed.Stop, len(stops))
	for _, stop := range stops {
		stopsByID[stop.ID] = stop
	}

	partitions := partitionBy(visits, func(v schedule.StopVisit) string {
		return v.PickupType
	})

	layers := make([]Layer, len(partitions))
	build := func(i int) {
		layers[i] = Layer{
			PickupType: partitions[i].key,
			Graph:      buildPartition(partitions[i].rows, stopsByID),
		}
	}

	if workers <= 1 || len(partitions) <= 1 {
		for i := range partitions {
			build(i)
		}
		return append(dst, layers...)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers && w < len(partitions); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				build(i)
			}
		}()
	}
	for i := range partitions {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return append(dst, layers...)
}

func buildPartition(visits []schedule.StopVisit, stopsByID map[int64]feed.Stop) *graph.Graph {
	b := graph.NewBuilder()

	trips := partitionBy(visits, func(v schedule.StopVisit) string {
		return v.TripID
	})

	for _, trip := range trips {
		addTripStops(b, trip.rows, stopsByID)
		addTripPath(b, trip.rows)
	}

	return b.Finalize()
}

func addTripStops(b *graph.Builder, visits []schedule.StopVisit, stopsByID map[int64]feed.Stop) {
	seen := make(map[int64]bool, len(visits))
	for _, v := range visits {
		if seen[v.StopID] {
			continue
		}
		seen[v.StopID] = true

		stop, ok := stopsByID[v.StopID]
		if !ok {
			continue
		}
		b.AddNode(stop.ID, graph.Position{Lon: stop.Lon, Lat: stop.Lat}, stop.Name)
	}
}

func addTripPath(b *graph.Builder, visits []schedule.StopVisit) {
	ordered := make([]schedule.StopVisit, len(visits))
	copy(ordered, visits)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StopSequence < ordered[j].StopSequence
	})

	for i := 0; i+1 < len(ordered); i++ {
		from, to := ordered[i], ordered[i+1]
		b.AddEdge(from.StopID, to.StopID, from.ArrivalTimeSeconds, to.ArrivalTimeSeconds)
	}
}
