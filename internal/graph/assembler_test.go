package graph

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"testing"

	"github.com/quarrylabs/atlas/internal/model"
)

// fakeSource serves canned neighborhoods keyed by "type:id".
type fakeSource struct {
	neighborhoods map[string]*Neighborhood
	calls         map[string]int
}

func (f *fakeSource) Neighborhood(_ context.Context, ref model.ResourceRef) (*Neighborhood, error) {
	if f.calls != nil {
		f.calls[ref.Key()]++
	}
	return f.neighborhoods[ref.Key()], nil
}

// fixture declares a resource set with parent pointers and relations, and
// expands it into consistent neighborhoods.
type fixture struct {
	records []Record
	parents map[string]string // child key -> parent key
	rels    [][3]string       // source key, target key, relation type
}

func (fx *fixture) source() *fakeSource {
	byKey := make(map[string]Record, len(fx.records))
	for _, r := range fx.records {
		byKey[r.Ref.Key()] = r
	}

	nbs := make(map[string]*Neighborhood, len(fx.records))
	for _, r := range fx.records {
		self := r
		nbs[r.Ref.Key()] = &Neighborhood{Self: &self}
	}

	for childKey, parentKey := range fx.parents {
		parent, pok := byKey[parentKey]
		child, cok := byKey[childKey]
		if !pok || !cok {
			continue
		}
		p := parent
		nbs[childKey].Parent = &p
		nbs[parentKey].Children = append(nbs[parentKey].Children, child)
	}

	for _, rl := range fx.rels {
		src, sok := byKey[rl[0]]
		tgt, tok := byKey[rl[1]]
		if !sok || !tok {
			continue
		}
		nbs[rl[0]].Dependencies = append(nbs[rl[0]].Dependencies, Dependency{Peer: tgt, Outbound: true, Label: rl[2]})
		nbs[rl[1]].Dependencies = append(nbs[rl[1]].Dependencies, Dependency{Peer: src, Outbound: false, Label: rl[2]})
	}

	return &fakeSource{neighborhoods: nbs, calls: map[string]int{}}
}

func org(id int64) Record {
	return Record{Ref: model.ResourceRef{Type: model.TypeOrganization, ID: id}, Name: fmt.Sprintf("org-%d", id)}
}

func ent(id int64) Record {
	return Record{Ref: model.ResourceRef{Type: model.TypeEntity, ID: id}, Name: fmt.Sprintf("entity-%d", id)}
}

func defaultOpts() Options {
	return Options{
		IncludeHierarchy:    true,
		IncludeDependencies: true,
		MaxHops:             2,
		MaxNodes:            50,
	}
}

func nodeKeys(resp *model.GraphResponse) []string {
	keys := make([]string, len(resp.Nodes))
	for i, n := range resp.Nodes {
		keys[i] = n.Key
	}
	sort.Strings(keys)
	return keys
}

func edgeStrings(resp *model.GraphResponse) []string {
	out := make([]string, len(resp.Edges))
	for i, e := range resp.Edges {
		out[i] = fmt.Sprintf("%s->%s/%s", e.From, e.To, e.Kind)
	}
	sort.Strings(out)
	return out
}

// Scenario from the design review: org 1 has child org 2 and entity 3;
// entity 3 depends on entity 4.
func scenarioFixture() *fixture {
	return &fixture{
		records: []Record{org(1), org(2), ent(3), ent(4)},
		parents: map[string]string{
			"organization:2": "organization:1",
			"entity:3":       "organization:1",
		},
		rels: [][3]string{{"entity:3", "entity:4", "depends-on"}},
	}
}

func TestBuildGraph_Scenario(t *testing.T) {
	a := New(scenarioFixture().source())
	resp, err := a.BuildGraph(context.Background(), model.ResourceRef{Type: model.TypeOrganization, ID: 1}, defaultOpts())
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	wantNodes := []string{"entity:3", "entity:4", "organization:1", "organization:2"}
	if got := nodeKeys(resp); !reflect.DeepEqual(got, wantNodes) {
		t.Errorf("nodes = %v, want %v", got, wantNodes)
	}

	wantEdges := []string{
		"entity:3->entity:4/dependency",
		"organization:1->entity:3/containment",
		"organization:1->organization:2/hierarchical",
	}
	if got := edgeStrings(resp); !reflect.DeepEqual(got, wantEdges) {
		t.Errorf("edges = %v, want %v", got, wantEdges)
	}

	if resp.Stats.Truncated {
		t.Error("expected truncated = false")
	}
	if resp.Stats.NodeCount != 4 || resp.Stats.EdgeCount != 3 {
		t.Errorf("stats = %+v, want 4 nodes / 3 edges", resp.Stats)
	}
}

func TestBuildGraph_RootNotFound(t *testing.T) {
	a := New((&fixture{}).source())
	resp, err := a.BuildGraph(context.Background(), model.ResourceRef{Type: model.TypeOrganization, ID: 99}, defaultOpts())
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if resp.Stats.NodeCount != 0 || len(resp.Nodes) != 0 || len(resp.Edges) != 0 {
		t.Errorf("expected empty graph, got %+v", resp)
	}
	if resp.Nodes == nil || resp.Edges == nil {
		t.Error("empty graph must have non-nil node and edge slices")
	}
}

func TestBuildGraph_Idempotent(t *testing.T) {
	a := New(scenarioFixture().source())
	root := model.ResourceRef{Type: model.TypeOrganization, ID: 1}

	first, err := a.BuildGraph(context.Background(), root, defaultOpts())
	if err != nil {
		t.Fatalf("first BuildGraph: %v", err)
	}
	second, err := a.BuildGraph(context.Background(), root, defaultOpts())
	if err != nil {
		t.Fatalf("second BuildGraph: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated calls differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestBuildGraph_DedupNodesAndEdges(t *testing.T) {
	// entity 2 and entity 3 are both children of org 1 and depend on each
	// other twice with the same relation type; entity 4 is reachable
	// through both of them.
	fx := &fixture{
		records: []Record{org(1), ent(2), ent(3), ent(4)},
		parents: map[string]string{
			"entity:2": "organization:1",
			"entity:3": "organization:1",
		},
		rels: [][3]string{
			{"entity:2", "entity:3", "depends-on"},
			{"entity:2", "entity:3", "depends-on"},
			{"entity:2", "entity:4", "depends-on"},
			{"entity:3", "entity:4", "depends-on"},
		},
	}
	a := New(fx.source())
	resp, err := a.BuildGraph(context.Background(), model.ResourceRef{Type: model.TypeOrganization, ID: 1}, defaultOpts())
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	seenNodes := map[string]bool{}
	for _, n := range resp.Nodes {
		if seenNodes[n.Key] {
			t.Errorf("duplicate node %q", n.Key)
		}
		seenNodes[n.Key] = true
	}
	seenEdges := map[string]bool{}
	for _, e := range resp.Edges {
		key := e.From + "|" + e.To + "|" + string(e.Kind)
		if seenEdges[key] {
			t.Errorf("duplicate edge %q", key)
		}
		seenEdges[key] = true
	}
	if len(resp.Nodes) != 4 {
		t.Errorf("node count = %d, want 4", len(resp.Nodes))
	}
}

func TestBuildGraph_Truncation(t *testing.T) {
	fx := &fixture{
		records: []Record{org(1)},
		parents: map[string]string{},
	}
	for id := int64(1); id <= 10; id++ {
		fx.records = append(fx.records, ent(id))
		fx.parents[fmt.Sprintf("entity:%d", id)] = "organization:1"
	}

	opts := defaultOpts()
	opts.MaxNodes = 5
	a := New(fx.source())
	resp, err := a.BuildGraph(context.Background(), model.ResourceRef{Type: model.TypeOrganization, ID: 1}, opts)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}

	if !resp.Stats.Truncated {
		t.Error("expected truncated = true")
	}
	if len(resp.Nodes) != 5 {
		t.Fatalf("node count = %d, want 5 (budget)", len(resp.Nodes))
	}
	// Admission is deterministic: root plus the four lowest entity ids.
	want := []string{"entity:1", "entity:2", "entity:3", "entity:4", "organization:1"}
	if got := nodeKeys(resp); !reflect.DeepEqual(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
	// No edge may dangle into a dropped node.
	admitted := map[string]bool{}
	for _, n := range resp.Nodes {
		admitted[n.Key] = true
	}
	for _, e := range resp.Edges {
		if !admitted[e.From] || !admitted[e.To] {
			t.Errorf("edge %s->%s references a node outside the graph", e.From, e.To)
		}
	}
}

func TestBuildGraph_HopBound(t *testing.T) {
	fx := &fixture{
		records: []Record{org(1), org(2), org(3), org(4)},
		parents: map[string]string{
			"organization:2": "organization:1",
			"organization:3": "organization:2",
			"organization:4": "organization:3",
		},
	}
	opts := defaultOpts()
	opts.MaxHops = 1
	a := New(fx.source())
	resp, err := a.BuildGraph(context.Background(), model.ResourceRef{Type: model.TypeOrganization, ID: 1}, opts)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	want := []string{"organization:1", "organization:2"}
	if got := nodeKeys(resp); !reflect.DeepEqual(got, want) {
		t.Errorf("nodes = %v, want %v (one hop from root)", got, want)
	}
}

func TestBuildGraph_ParentEdgeDirection(t *testing.T) {
	// Traversal starts at the child; the hierarchical edge must still be
	// recorded parent -> child.
	fx := &fixture{
		records: []Record{org(1), org(2)},
		parents: map[string]string{"organization:2": "organization:1"},
	}
	a := New(fx.source())
	resp, err := a.BuildGraph(context.Background(), model.ResourceRef{Type: model.TypeOrganization, ID: 2}, defaultOpts())
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if len(resp.Edges) != 1 {
		t.Fatalf("edge count = %d, want 1", len(resp.Edges))
	}
	e := resp.Edges[0]
	if e.From != "organization:1" || e.To != "organization:2" || e.Kind != model.EdgeHierarchical {
		t.Errorf("edge = %+v, want organization:1 -> organization:2 hierarchical", e)
	}
}

func TestBuildGraph_UnknownTypeSkipped(t *testing.T) {
	bogus := Record{Ref: model.ResourceRef{Type: "widget", ID: 9}, Name: "mystery"}
	fx := scenarioFixture()
	fx.records = append(fx.records, bogus)
	src := fx.source()
	// Splice the malformed record in as a child of the root.
	src.neighborhoods["organization:1"].Children = append(src.neighborhoods["organization:1"].Children, bogus)

	a := New(src)
	resp, err := a.BuildGraph(context.Background(), model.ResourceRef{Type: model.TypeOrganization, ID: 1}, defaultOpts())
	if err != nil {
		t.Fatalf("BuildGraph should not fail on unknown types: %v", err)
	}
	for _, n := range resp.Nodes {
		if n.Key == "widget:9" {
			t.Error("unknown-typed record must be skipped, not included")
		}
	}
}

func TestBuildGraph_TypeFilter(t *testing.T) {
	opts := defaultOpts()
	opts.AllowedTypes = map[model.ResourceType]bool{model.TypeOrganization: true}
	a := New(scenarioFixture().source())
	resp, err := a.BuildGraph(context.Background(), model.ResourceRef{Type: model.TypeOrganization, ID: 1}, opts)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	want := []string{"organization:1", "organization:2"}
	if got := nodeKeys(resp); !reflect.DeepEqual(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
}

func TestBuildGraph_RelationTogglesOff(t *testing.T) {
	root := model.ResourceRef{Type: model.TypeOrganization, ID: 1}

	opts := defaultOpts()
	opts.IncludeDependencies = false
	a := New(scenarioFixture().source())
	resp, err := a.BuildGraph(context.Background(), root, opts)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	for _, e := range resp.Edges {
		if e.Kind == model.EdgeDependency {
			t.Errorf("dependency edge %+v emitted with dependencies disabled", e)
		}
	}

	opts = defaultOpts()
	opts.IncludeHierarchy = false
	resp, err = a.BuildGraph(context.Background(), root, opts)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	// Without hierarchy the root has no relations of its own, so the graph
	// is just the root.
	if len(resp.Nodes) != 1 || len(resp.Edges) != 0 {
		t.Errorf("got %d nodes / %d edges, want root only", len(resp.Nodes), len(resp.Edges))
	}
}

func TestBuildGraph_ParentCycleTerminates(t *testing.T) {
	fx := &fixture{
		records: []Record{org(1), org(2)},
		parents: map[string]string{
			"organization:1": "organization:2",
			"organization:2": "organization:1",
		},
	}
	opts := defaultOpts()
	opts.MaxHops = 10
	a := New(fx.source())
	resp, err := a.BuildGraph(context.Background(), model.ResourceRef{Type: model.TypeOrganization, ID: 1}, opts)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if len(resp.Nodes) != 2 {
		t.Errorf("node count = %d, want 2 (each node once despite the cycle)", len(resp.Nodes))
	}
}

func TestBuildGraph_BudgetOfOne(t *testing.T) {
	opts := defaultOpts()
	opts.MaxNodes = 1
	a := New(scenarioFixture().source())
	resp, err := a.BuildGraph(context.Background(), model.ResourceRef{Type: model.TypeOrganization, ID: 1}, opts)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if len(resp.Nodes) != 1 || resp.Nodes[0].Key != "organization:1" {
		t.Errorf("nodes = %v, want root only", nodeKeys(resp))
	}
	if !resp.Stats.Truncated {
		t.Error("expected truncated = true when reachable set exceeds budget")
	}
}

func TestBuildGraph_ExactFitBudgetStillTruncates(t *testing.T) {
	// A chain org 1 -> 2 -> 3 with a budget of 2: the first hop fills the
	// budget exactly, leaving org 3 reachable but inadmissible.
	fx := &fixture{
		records: []Record{org(1), org(2), org(3)},
		parents: map[string]string{
			"organization:2": "organization:1",
			"organization:3": "organization:2",
		},
	}
	opts := defaultOpts()
	opts.MaxHops = 5
	opts.MaxNodes = 2
	a := New(fx.source())
	resp, err := a.BuildGraph(context.Background(), model.ResourceRef{Type: model.TypeOrganization, ID: 1}, opts)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	want := []string{"organization:1", "organization:2"}
	if got := nodeKeys(resp); !reflect.DeepEqual(got, want) {
		t.Errorf("nodes = %v, want %v", got, want)
	}
	if !resp.Stats.Truncated {
		t.Error("expected truncated = true when the budget fills at a hop boundary with nodes still reachable")
	}
}

func TestBuildGraph_FullyExploredExactFitNotTruncated(t *testing.T) {
	// Budget matches the reachable set exactly: no truncation.
	fx := &fixture{
		records: []Record{org(1), org(2)},
		parents: map[string]string{"organization:2": "organization:1"},
	}
	opts := defaultOpts()
	opts.MaxHops = 5
	opts.MaxNodes = 2
	a := New(fx.source())
	resp, err := a.BuildGraph(context.Background(), model.ResourceRef{Type: model.TypeOrganization, ID: 1}, opts)
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	if len(resp.Nodes) != 2 {
		t.Fatalf("node count = %d, want 2", len(resp.Nodes))
	}
	if resp.Stats.Truncated {
		t.Error("expected truncated = false when the budget covers the whole reachable set")
	}
}

func TestBuildGraph_NodeMetadata(t *testing.T) {
	rec := ent(3)
	rec.OrganizationID = 1
	rec.ParentID = 1
	fx := &fixture{
		records: []Record{org(1), rec},
		parents: map[string]string{"entity:3": "organization:1"},
	}
	a := New(fx.source())
	resp, err := a.BuildGraph(context.Background(), model.ResourceRef{Type: model.TypeOrganization, ID: 1}, defaultOpts())
	if err != nil {
		t.Fatalf("BuildGraph: %v", err)
	}
	var node *model.Node
	for i := range resp.Nodes {
		if resp.Nodes[i].Key == "entity:3" {
			node = &resp.Nodes[i]
		}
	}
	if node == nil {
		t.Fatal("entity:3 missing from graph")
	}
	if node.Metadata["resource_id"] != int64(3) {
		t.Errorf("metadata resource_id = %v, want 3", node.Metadata["resource_id"])
	}
	if node.Metadata["organization_id"] != int64(1) {
		t.Errorf("metadata organization_id = %v, want 1", node.Metadata["organization_id"])
	}
	if node.Metadata["parent_id"] != int64(1) {
		t.Errorf("metadata parent_id = %v, want 1", node.Metadata["parent_id"])
	}
}

func TestBuildGraph_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := New(scenarioFixture().source())
	if _, err := a.BuildGraph(ctx, model.ResourceRef{Type: model.TypeOrganization, ID: 1}, defaultOpts()); err == nil {
		t.Error("expected context error")
	}
}
