// Package graph holds the undirected stop graph produced for one pickup type
// partition and the builder that assembles it.
package graph

import (
	"sort"
)

// Position is a stop location in WGS84 degrees.
type Position struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Node is a stop in the graph. HasAttributes is false for stops that were
// only reached as an edge endpoint and never described by the stops table.
type Node struct {
	ID            int64    `json:"id"`
	Position      Position `json:"position"`
	Name          string   `json:"name"`
	HasAttributes bool     `json:"hasAttributes"`
}

// Edge is one scheduled leg between two consecutive stops of a trip.
// From and To keep the orientation of the trip that last wrote the edge.
type Edge struct {
	From      int64 `json:"from"`
	To        int64 `json:"to"`
	StartTime int64 `json:"startTime"`
	EndTime   int64 `json:"endTime"`
}

// Key returns the unordered endpoint pair identifying the edge.
func (e Edge) Key() EdgeKey {
	return NewEdgeKey(e.From, e.To)
}

// EdgeKey identifies an edge by its unordered endpoint pair, so (a, b) and
// (b, a) are the same edge. A is never greater than B.
type EdgeKey struct {
	A int64
	B int64
}

// NewEdgeKey orders u and v into a key.
func NewEdgeKey(u, v int64) EdgeKey {
	if u > v {
		u, v = v, u
	}
	return EdgeKey{A: u, B: v}
}

// Graph is a simple undirected graph of stops. It is read-only once returned
// by Builder.Finalize.
type Graph struct {
	nodes   map[int64]Node
	edges   map[EdgeKey]Edge
	degrees map[int64]int
}

func newGraph() *Graph {
	return &Graph{
		nodes: make(map[int64]Node),
		edges: make(map[EdgeKey]Edge),
	}
}

func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

func (g *Graph) EdgeCount() int {
	return len(g.edges)
}

// Node returns the stop with the given ID, if the graph has one.
func (g *Graph) Node(id int64) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Edge looks up the edge between u and v in either orientation.
func (g *Graph) Edge(u, v int64) (Edge, bool) {
	e, ok := g.edges[NewEdgeKey(u, v)]
	return e, ok
}

// Nodes returns all nodes ordered by stop ID.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}

// Edges returns all edges ordered by their endpoint pair.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, e)
	}
	sort.Slice(edges, func(i, j int) bool {
		ki, kj := edges[i].Key(), edges[j].Key()
		if ki.A != kj.A {
			return ki.A < kj.A
		}
		return ki.B < kj.B
	})
	return edges
}

// Degree counts the edges touching id. A self loop counts twice.
func (g *Graph) Degree(id int64) int {
	return g.degrees[id]
}

func (g *Graph) countDegrees() {
	g.degrees = make(map[int64]int, len(g.nodes))
	for key := range g.edges {
		g.degrees[key.A]++
		g.degrees[key.B]++
	}
}

// Equal reports whether both graphs hold the same nodes and edges,
// regardless of insertion order.
func (g *Graph) Equal(other *Graph) bool {
	if g == nil || other == nil {
		return g == other
	}
	if len(g.nodes) != len(other.nodes) || len(g.edges) != len(other.edges) {
		return false
	}
	for id, n := range g.nodes {
		if o, ok := other.nodes[id]; !ok || o != n {
			return false
		}
	}
	for key, e := range g.edges {
		if o, ok := other.edges[key]; !ok || o != e {
			return false
		}
	}
	return true
}
