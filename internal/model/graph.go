package model

// EdgeKind classifies a graph edge for rendering.
type EdgeKind string

const (
	// EdgeHierarchical links a parent resource to a child of the same type.
	EdgeHierarchical EdgeKind = "hierarchical"
	// EdgeContainment links a parent resource to a child of a different type.
	EdgeContainment EdgeKind = "containment"
	// EdgeDependency links a relation source to its target.
	EdgeDependency EdgeKind = "dependency"
)

// Node is a deduplicated graph vertex keyed by "type:id".
// Metadata always carries the original resource id, plus organization_id
// and parent_id when known, for downstream navigation.
type Node struct {
	Key      string         `json:"key"`
	Label    string         `json:"label"`
	Type     ResourceType   `json:"type"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Edge is a directed graph edge. Hierarchical and containment edges always
// point parent to child regardless of traversal direction; dependency edges
// point source to target.
type Edge struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Kind  EdgeKind `json:"kind"`
	Label string   `json:"label,omitempty"`
}

// GraphStats summarizes an assembled graph.
type GraphStats struct {
	NodeCount int  `json:"node_count"`
	EdgeCount int  `json:"edge_count"`
	Truncated bool `json:"truncated"`
}

// GraphResponse is the response for the graph visualization endpoint.
type GraphResponse struct {
	Nodes []Node     `json:"nodes"`
	Edges []Edge     `json:"edges"`
	Stats GraphStats `json:"stats"`
}
