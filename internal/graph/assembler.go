// Package graph assembles bounded, deduplicated relationship graphs from
// flat resource records for force-directed visualization.
package graph

import (
	"context"
	"sort"

	"github.com/quarrylabs/atlas/internal/model"
)

// Default traversal bounds applied when Options leaves them zero.
const (
	DefaultMaxHops  = 2
	DefaultMaxNodes = 250
	maxHopLimit     = 10
)

// Record is the minimal view of a resource the assembler needs.
type Record struct {
	Ref            model.ResourceRef
	Name           string
	OrganizationID int64 // 0 = none
	ParentID       int64 // 0 = none
}

// Dependency is a directed relation incident to the record a Neighborhood
// describes. Outbound is true when that record is the relation source.
type Dependency struct {
	Peer     Record
	Outbound bool
	Label    string // relation type, e.g. "depends-on"
}

// Neighborhood holds the records directly related to one resource.
// A nil Self means the resource does not exist.
type Neighborhood struct {
	Self         *Record
	Parent       *Record
	Children     []Record
	Dependencies []Dependency
}

// Source provides the immediate neighborhood of a resource. Fetches must be
// idempotent: the assembler may ask for the same ref more than once.
type Source interface {
	Neighborhood(ctx context.Context, ref model.ResourceRef) (*Neighborhood, error)
}

// Options bound and filter a traversal.
type Options struct {
	AllowedTypes        map[model.ResourceType]bool // nil or empty = all types
	IncludeHierarchy    bool
	IncludeDependencies bool
	MaxHops             int // clamped to [1, 10]; 0 = DefaultMaxHops
	MaxNodes            int // 0 = DefaultMaxNodes
}

func (o *Options) normalize() {
	if o.MaxHops < 1 {
		o.MaxHops = DefaultMaxHops
	}
	if o.MaxHops > maxHopLimit {
		o.MaxHops = maxHopLimit
	}
	if o.MaxNodes < 1 {
		o.MaxNodes = DefaultMaxNodes
	}
}

func (o Options) typeAllowed(t model.ResourceType) bool {
	if len(o.AllowedTypes) == 0 {
		return true
	}
	return o.AllowedTypes[t]
}

// Assembler performs level-synchronous breadth-first traversal over
// hierarchy and dependency relations. It keeps no state between calls;
// a single Assembler is safe for concurrent use.
type Assembler struct {
	source Source
}

// New returns an Assembler reading from the given source.
func New(source Source) *Assembler {
	return &Assembler{source: source}
}

// frontierEntry is a node awaiting expansion. The root carries its already
// fetched neighborhood; later entries are fetched lazily at their hop.
type frontierEntry struct {
	ref model.ResourceRef
	nb  *Neighborhood
}

// BuildGraph expands outward from root, one hop at a time, and returns the
// deduplicated nodes and edges plus truncation stats.
//
// Nodes are deduplicated by "type:id" key and admitted per hop in ascending
// (type, id) order, so repeated calls over an unchanged source produce
// identical output. When admitting a hop's discoveries would exceed
// MaxNodes, nodes are admitted in that order until the budget is exhausted,
// the result is marked truncated, and the traversal stops at the hop
// boundary. Edges are only emitted when both endpoints were admitted.
//
// A missing root yields an empty, valid graph rather than an error. Related
// records with an unknown type are skipped.
func (a *Assembler) BuildGraph(ctx context.Context, root model.ResourceRef, opts Options) (*model.GraphResponse, error) {
	opts.normalize()

	resp := &model.GraphResponse{
		Nodes: []model.Node{},
		Edges: []model.Edge{},
	}

	if !root.Type.IsValid() {
		return resp, nil
	}
	rootNB, err := a.source.Neighborhood(ctx, root)
	if err != nil {
		return nil, err
	}
	if rootNB == nil || rootNB.Self == nil {
		// Root not found is a renderable empty state, not an error.
		return resp, nil
	}

	visited := map[string]bool{root.Key(): true}
	edgeSeen := map[string]bool{}
	nodes := []model.Node{nodeFor(*rootNB.Self)}
	var edges []model.Edge
	truncated := false

	frontier := []frontierEntry{{ref: root, nb: rootNB}}

	// The budget does not gate the loop: a hop must still run when the
	// budget is already full so that reachable-but-inadmissible discoveries
	// mark the result truncated instead of silently vanishing.
	for hop := 0; hop < opts.MaxHops && len(frontier) > 0; hop++ {
		// The hop boundary is the traversal's natural suspension point.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		candidates := map[string]Record{}
		var pending []model.Edge

		for _, fe := range frontier {
			nb := fe.nb
			if nb == nil {
				nb, err = a.source.Neighborhood(ctx, fe.ref)
				if err != nil {
					return nil, err
				}
			}
			if nb == nil || nb.Self == nil {
				continue
			}
			self := *nb.Self

			consider := func(rec Record) bool {
				if !rec.Ref.Type.IsValid() || !opts.typeAllowed(rec.Ref.Type) {
					return false
				}
				if !visited[rec.Ref.Key()] {
					candidates[rec.Ref.Key()] = rec
				}
				return true
			}

			if opts.IncludeHierarchy {
				if nb.Parent != nil && consider(*nb.Parent) {
					pending = append(pending, hierarchyEdge(*nb.Parent, self))
				}
				for _, child := range sortedRecords(nb.Children) {
					if consider(child) {
						pending = append(pending, hierarchyEdge(self, child))
					}
				}
			}
			if opts.IncludeDependencies {
				for _, dep := range sortedDependencies(nb.Dependencies) {
					if !consider(dep.Peer) {
						continue
					}
					from, to := self.Ref, dep.Peer.Ref
					if !dep.Outbound {
						from, to = dep.Peer.Ref, self.Ref
					}
					pending = append(pending, model.Edge{
						From:  from.Key(),
						To:    to.Key(),
						Kind:  model.EdgeDependency,
						Label: dep.Label,
					})
				}
			}
		}

		// Admit this hop's discoveries in ascending (type, id) order so
		// truncation is reproducible.
		admitted := make([]Record, 0, len(candidates))
		for _, rec := range candidates {
			admitted = append(admitted, rec)
		}
		sortRecordsInPlace(admitted)

		var next []frontierEntry
		for _, rec := range admitted {
			if len(nodes) >= opts.MaxNodes {
				truncated = true
				break
			}
			visited[rec.Ref.Key()] = true
			nodes = append(nodes, nodeFor(rec))
			next = append(next, frontierEntry{ref: rec.Ref})
		}

		// Edges are kept only when both endpoints made it into the graph.
		for _, e := range pending {
			if !visited[e.From] || !visited[e.To] {
				continue
			}
			key := e.From + "|" + e.To + "|" + string(e.Kind)
			if edgeSeen[key] {
				continue
			}
			edgeSeen[key] = true
			edges = append(edges, e)
		}

		if truncated {
			break
		}
		frontier = next
	}

	resp.Nodes = nodes
	if edges != nil {
		resp.Edges = edges
	}
	resp.Stats = model.GraphStats{
		NodeCount: len(nodes),
		EdgeCount: len(resp.Edges),
		Truncated: truncated,
	}
	return resp, nil
}

// hierarchyEdge builds a parent-to-child edge. The direction is fixed
// parent to child regardless of which side the traversal discovered first,
// so renderers can draw consistent tree layouts from any root.
func hierarchyEdge(parent, child Record) model.Edge {
	if parent.Ref.Type == child.Ref.Type {
		return model.Edge{
			From:  parent.Ref.Key(),
			To:    child.Ref.Key(),
			Kind:  model.EdgeHierarchical,
			Label: "parent",
		}
	}
	return model.Edge{
		From:  parent.Ref.Key(),
		To:    child.Ref.Key(),
		Kind:  model.EdgeContainment,
		Label: "contains",
	}
}

func nodeFor(rec Record) model.Node {
	meta := map[string]any{"resource_id": rec.Ref.ID}
	if rec.OrganizationID != 0 {
		meta["organization_id"] = rec.OrganizationID
	}
	if rec.ParentID != 0 {
		meta["parent_id"] = rec.ParentID
	}
	return model.Node{
		Key:      rec.Ref.Key(),
		Label:    rec.Name,
		Type:     rec.Ref.Type,
		Metadata: meta,
	}
}

func refLess(a, b model.ResourceRef) bool {
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	return a.ID < b.ID
}

func sortRecordsInPlace(recs []Record) {
	sort.Slice(recs, func(i, j int) bool {
		return refLess(recs[i].Ref, recs[j].Ref)
	})
}

// sortedRecords returns a sorted copy so the assembler does not depend on
// the source's ordering for determinism.
func sortedRecords(recs []Record) []Record {
	out := make([]Record, len(recs))
	copy(out, recs)
	sortRecordsInPlace(out)
	return out
}

func sortedDependencies(deps []Dependency) []Dependency {
	out := make([]Dependency, len(deps))
	copy(out, deps)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Peer.Ref != out[j].Peer.Ref {
			return refLess(out[i].Peer.Ref, out[j].Peer.Ref)
		}
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].Outbound && !out[j].Outbound
	})
	return out
}
