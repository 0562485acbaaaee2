package sync

import (
	"context"
	"database/sql"

	"github.com/quarrylabs/atlas/internal/graph"
	"github.com/quarrylabs/atlas/internal/model"
	"github.com/quarrylabs/atlas/internal/store"
)

// mockStore is a minimal in-memory store for sync tests.
type mockStore struct {
	resources map[int64]*model.Resource
	configs   map[string]*model.Config
	tags      map[int64][]string
	relations map[int64][]*model.Relation
}

func newMockStore() *mockStore {
	return &mockStore{
		resources: make(map[int64]*model.Resource),
		configs:   make(map[string]*model.Config),
		tags:      make(map[int64][]string),
		relations: make(map[int64][]*model.Relation),
	}
}

func (m *mockStore) CreateResource(_ context.Context, r *model.Resource) error {
	m.resources[r.ID] = r
	return nil
}

func (m *mockStore) GetResource(_ context.Context, id int64) (*model.Resource, error) {
	r, ok := m.resources[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return r, nil
}

func (m *mockStore) GetResourceBySlug(_ context.Context, slug string) (*model.Resource, error) {
	for _, r := range m.resources {
		if r.Slug == slug {
			return r, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListResources(_ context.Context, _ model.ResourceFilter) ([]*model.Resource, int, error) {
	var result []*model.Resource
	for _, r := range m.resources {
		result = append(result, r)
	}
	return result, len(result), nil
}

func (m *mockStore) ListChildren(_ context.Context, parentID int64) ([]*model.Resource, error) {
	var result []*model.Resource
	for _, r := range m.resources {
		if r.ParentID != nil && *r.ParentID == parentID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockStore) UpdateResource(_ context.Context, r *model.Resource) error {
	m.resources[r.ID] = r
	return nil
}

func (m *mockStore) DeleteResource(_ context.Context, id int64) error {
	delete(m.resources, id)
	return nil
}

func (m *mockStore) AddRelation(_ context.Context, rel *model.Relation) error {
	m.relations[rel.SourceID] = append(m.relations[rel.SourceID], rel)
	return nil
}

func (m *mockStore) RemoveRelation(_ context.Context, sourceID, targetID int64, relType model.RelationType) error {
	rels := m.relations[sourceID]
	for i, rel := range rels {
		if rel.TargetID == targetID && rel.Type == relType {
			m.relations[sourceID] = append(rels[:i], rels[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockStore) GetRelations(_ context.Context, resourceID int64) ([]*model.Relation, error) {
	return m.relations[resourceID], nil
}

func (m *mockStore) AddTag(_ context.Context, resourceID int64, tag string) error {
	m.tags[resourceID] = append(m.tags[resourceID], tag)
	return nil
}

func (m *mockStore) RemoveTag(_ context.Context, resourceID int64, tag string) error {
	tags := m.tags[resourceID]
	for i, t := range tags {
		if t == tag {
			m.tags[resourceID] = append(tags[:i], tags[i+1:]...)
			return nil
		}
	}
	return nil
}

func (m *mockStore) GetTags(_ context.Context, resourceID int64) ([]string, error) {
	return m.tags[resourceID], nil
}

func (m *mockStore) GetNeighborhood(_ context.Context, _ model.ResourceRef) (*graph.Neighborhood, error) {
	return &graph.Neighborhood{}, nil
}

func (m *mockStore) GetStats(_ context.Context) (*model.InventoryStats, error) {
	return &model.InventoryStats{}, nil
}

func (m *mockStore) RecordEvent(_ context.Context, _ *model.Event) error {
	return nil
}

func (m *mockStore) GetEvents(_ context.Context, _ int64) ([]*model.Event, error) {
	return nil, nil
}

func (m *mockStore) SetConfig(_ context.Context, config *model.Config) error {
	m.configs[config.Key] = config
	return nil
}

func (m *mockStore) GetConfig(_ context.Context, key string) (*model.Config, error) {
	c, ok := m.configs[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (m *mockStore) ListConfigs(_ context.Context, _ string) ([]*model.Config, error) {
	return m.ListAllConfigs(context.Background())
}

func (m *mockStore) ListAllConfigs(_ context.Context) ([]*model.Config, error) {
	var result []*model.Config
	for _, c := range m.configs {
		result = append(result, c)
	}
	return result, nil
}

func (m *mockStore) DeleteConfig(_ context.Context, key string) error {
	delete(m.configs, key)
	return nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }
