package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitlab/stopgraph/internal/graph"
	"github.com/transitlab/stopgraph/internal/layered"
)

func testGraph() *graph.Graph {
	b := graph.NewBuilder()
	b.AddNode(1, graph.Position{Lon: 21.0, Lat: 52.1}, "Alpha")
	b.AddEdge(2, 1, 90000, 90600)
	return b.Finalize()
}

func TestNewGraphEntries(t *testing.T) {
	c := layered.Collection{
		{PickupType: "0", Graph: testGraph()},
		{PickupType: "1", Graph: graph.NewBuilder().Finalize()},
	}

	entries := NewGraphEntries("build-1", c)

	require.Len(t, entries, 2)
	assert.Equal(t, "build-1", entries[0].BuildID)
	assert.Equal(t, layered.LayerSummary{Index: 0, PickupType: "0", Nodes: 2, Edges: 1}, entries[0].LayerSummary)
	assert.Equal(t, 1, entries[1].Index)

	data, err := json.Marshal(entries[0])
	require.NoError(t, err)
	assert.JSONEq(t, `{"buildId":"build-1","index":0,"pickupType":"0","nodes":2,"edges":1,"isolatedNodes":0}`, string(data))
}

func TestNewNodeEntries(t *testing.T) {
	entries := NewNodeEntries(testGraph())

	assert.Equal(t, []NodeEntry{
		{Node: graph.Node{ID: 1, Position: graph.Position{Lon: 21.0, Lat: 52.1}, Name: "Alpha", HasAttributes: true}, Degree: 1},
		{Node: graph.Node{ID: 2}, Degree: 1},
	}, entries)
}

func TestNewEdgeEntries(t *testing.T) {
	entries := NewEdgeEntries(testGraph())

	require.Len(t, entries, 1)
	assert.Equal(t, EdgeEntry{
		Edge:          graph.Edge{From: 2, To: 1, StartTime: 90000, EndTime: 90600},
		StartTimeText: "25:00:00",
		EndTimeText:   "25:10:00",
		TravelTime:    600,
	}, entries[0])

	assert.Empty(t, NewEdgeEntries(graph.NewBuilder().Finalize()))
}
