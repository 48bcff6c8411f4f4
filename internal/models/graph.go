package models

import (
	"github.com/transitlab/stopgraph/internal/graph"
	"github.com/transitlab/stopgraph/internal/layered"
	"github.com/transitlab/stopgraph/internal/schedule"
)

// GraphEntry describes one layer of a build.
type GraphEntry struct {
	BuildID string `json:"buildId"`
	layered.LayerSummary
}

// NodeEntry is a stop node with its degree in the layer.
type NodeEntry struct {
	graph.Node
	Degree int `json:"degree"`
}

// EdgeEntry is a scheduled leg; times are seconds since midnight.
type EdgeEntry struct {
	graph.Edge
	StartTimeText string `json:"startTimeText"`
	EndTimeText   string `json:"endTimeText"`
	TravelTime    int64  `json:"travelTime"`
}

// NewGraphEntries summarizes every layer of c, stamped with the build it
// came from.
func NewGraphEntries(buildID string, c layered.Collection) []GraphEntry {
	summaries := layered.Summarize(c)
	entries := make([]GraphEntry, len(summaries))
	for i, s := range summaries {
		entries[i] = GraphEntry{BuildID: buildID, LayerSummary: s}
	}
	return entries
}

func NewNodeEntries(g *graph.Graph) []NodeEntry {
	nodes := g.Nodes()
	entries := make([]NodeEntry, len(nodes))
	for i, n := range nodes {
		entries[i] = NodeEntry{Node: n, Degree: g.Degree(n.ID)}
	}
	return entries
}

// NewEdgeEntries adds readable times and travel time to each edge.
func NewEdgeEntries(g *graph.Graph) []EdgeEntry {
	edges := g.Edges()
	entries := make([]EdgeEntry, len(edges))
	for i, e := range edges {
		entries[i] = EdgeEntry{
			Edge:          e,
			StartTimeText: schedule.FormatSeconds(e.StartTime),
			EndTimeText:   schedule.FormatSeconds(e.EndTime),
			TravelTime:    e.EndTime - e.StartTime,
		}
	}
	return entries
}
