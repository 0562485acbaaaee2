package store

import (
	"context"

	"github.com/quarrylabs/atlas/internal/graph"
	"github.com/quarrylabs/atlas/internal/model"
)

// Store defines the persistence interface for the inventory.
type Store interface {
	// Resource CRUD
	CreateResource(ctx context.Context, r *model.Resource) error
	GetResource(ctx context.Context, id int64) (*model.Resource, error)
	GetResourceBySlug(ctx context.Context, slug string) (*model.Resource, error)
	ListResources(ctx context.Context, filter model.ResourceFilter) ([]*model.Resource, int, error) // returns resources, total count, error
	ListChildren(ctx context.Context, parentID int64) ([]*model.Resource, error)
	UpdateResource(ctx context.Context, r *model.Resource) error
	DeleteResource(ctx context.Context, id int64) error

	// Relations
	AddRelation(ctx context.Context, rel *model.Relation) error
	RemoveRelation(ctx context.Context, sourceID, targetID int64, relType model.RelationType) error
	GetRelations(ctx context.Context, resourceID int64) ([]*model.Relation, error)

	// Tags
	AddTag(ctx context.Context, resourceID int64, tag string) error
	RemoveTag(ctx context.Context, resourceID int64, tag string) error
	GetTags(ctx context.Context, resourceID int64) ([]string, error)

	// Graph traversal input. Returns a neighborhood with a nil Self when the
	// resource does not exist.
	GetNeighborhood(ctx context.Context, ref model.ResourceRef) (*graph.Neighborhood, error)

	// Stats
	GetStats(ctx context.Context) (*model.InventoryStats, error)

	// Events
	RecordEvent(ctx context.Context, event *model.Event) error
	GetEvents(ctx context.Context, resourceID int64) ([]*model.Event, error)

	// Configs
	SetConfig(ctx context.Context, config *model.Config) error
	GetConfig(ctx context.Context, key string) (*model.Config, error)
	ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error)
	ListAllConfigs(ctx context.Context) ([]*model.Config, error)
	DeleteConfig(ctx context.Context, key string) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
