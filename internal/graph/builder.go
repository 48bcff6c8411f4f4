package graph

// Builder assembles a single Graph. It is owned by one goroutine until
// Finalize hands the graph over; using it afterwards panics.
type Builder struct {
	graph *Graph
}

// NewBuilder returns a builder for an empty graph.
func NewBuilder() *Builder {
	return &Builder{graph: newGraph()}
}

// AddNode inserts the stop or overwrites the attributes of an existing one.
func (b *Builder) AddNode(id int64, pos Position, name string) {
	b.mustBeOpen()
	b.graph.nodes[id] = Node{
		ID:            id,
		Position:      pos,
		Name:          name,
		HasAttributes: true,
	}
}

// AddEdge upserts the edge between from and to: a later call for the same
// endpoint pair, in either orientation, replaces the earlier times. Missing
// endpoints are created without attributes.
func (b *Builder) AddEdge(from, to int64, startTime, endTime int64) {
	b.mustBeOpen()
	b.ensureNode(from)
	b.ensureNode(to)
	b.graph.edges[NewEdgeKey(from, to)] = Edge{
		From:      from,
		To:        to,
		StartTime: startTime,
		EndTime:   endTime,
	}
}

// Finalize returns the built graph and releases the builder.
func (b *Builder) Finalize() *Graph {
	b.mustBeOpen()
	g := b.graph
	g.countDegrees()
	b.graph = nil
	return g
}

func (b *Builder) ensureNode(id int64) {
	if _, ok := b.graph.nodes[id]; !ok {
		b.graph.nodes[id] = Node{ID: id}
	}
}

func (b *Builder) mustBeOpen() {
	if b.graph == nil {
		panic("graph: builder used after Finalize")
	}
}
