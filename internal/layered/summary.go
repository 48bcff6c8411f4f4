package layered

import (
	"fmt"
	"io"
)

// LayerSummary counts what one layer holds.
type LayerSummary struct {
	Index         int    `json:"index"`
	PickupType    string `json:"pickupType"`
	Nodes         int    `json:"nodes"`
	Edges         int    `json:"edges"`
	IsolatedNodes int    `json:"isolatedNodes"`
}

// Summarize reports node, edge and isolated node counts per layer, in
// collection order. A node is isolated when no edge touches it.
func Summarize(c Collection) []LayerSummary {
	summaries := make([]LayerSummary, len(c))
	for i, layer := range c {
		isolated := 0
		for _, n := range layer.Graph.Nodes() {
			if layer.Graph.Degree(n.ID) == 0 {
				isolated++
			}
		}
		summaries[i] = LayerSummary{
			Index:         i,
			PickupType:    layer.PickupType,
			Nodes:         layer.Graph.NodeCount(),
			Edges:         layer.Graph.EdgeCount(),
			IsolatedNodes: isolated,
		}
	}
	return summaries
}

// PrintStatistics writes a human readable summary of the collection.
func PrintStatistics(w io.Writer, c Collection) {
	fmt.Fprintf(w, "Layers: %d\n", len(c)) // nolint:errcheck
	for _, s := range Summarize(c) {
		fmt.Fprintf(w, "  [%d] pickup_type=%q nodes=%d edges=%d isolated=%d\n", // nolint:errcheck
			s.Index, s.PickupType, s.Nodes, s.Edges, s.IsolatedNodes)
	}
}
