// Package client provides a transport-agnostic interface for the atlas
// service and an HTTP/JSON implementation that talks to the atlas REST API.
package client

import (
	"context"
	"encoding/json"

	"github.com/quarrylabs/atlas/internal/model"
	"github.com/quarrylabs/atlas/internal/tree"
)

// AtlasClient is the interface that all atlas CLI commands use to communicate
// with the inventory server. It is implemented by HTTPClient (default) and
// can be backed by any transport.
type AtlasClient interface {
	// Resource CRUD
	CreateResource(ctx context.Context, req *CreateResourceRequest) (*model.Resource, error)
	GetResource(ctx context.Context, idOrSlug string) (*model.Resource, error)
	ListResources(ctx context.Context, req *ListResourcesRequest) (*ListResourcesResponse, error)
	UpdateResource(ctx context.Context, id int64, req *UpdateResourceRequest) (*model.Resource, error)
	DeleteResource(ctx context.Context, id int64) error
	ListChildren(ctx context.Context, id int64) ([]*model.Resource, error)

	// Relations
	AddRelation(ctx context.Context, req *AddRelationRequest) (*model.Relation, error)
	RemoveRelation(ctx context.Context, sourceID, targetID int64, relType string) error
	GetRelations(ctx context.Context, resourceID int64) ([]*model.Relation, error)

	// Tags
	AddTag(ctx context.Context, resourceID int64, tag string) error
	RemoveTag(ctx context.Context, resourceID int64, tag string) error
	GetTags(ctx context.Context, resourceID int64) ([]string, error)

	// Events
	GetEvents(ctx context.Context, resourceID int64) ([]*model.Event, error)

	// Graph & tree
	GetGraph(ctx context.Context, req *GraphRequest) (*model.GraphResponse, error)
	GetTree(ctx context.Context, req *TreeRequest) (*TreeResponse, error)

	// Stats
	GetStats(ctx context.Context) (*model.InventoryStats, error)

	// Config
	SetConfig(ctx context.Context, key string, value json.RawMessage) (*model.Config, error)
	GetConfig(ctx context.Context, key string) (*model.Config, error)
	ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error)
	DeleteConfig(ctx context.Context, key string) error

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// CreateResourceRequest holds parameters for creating a resource.
type CreateResourceRequest struct {
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	Slug           string          `json:"slug,omitempty"`
	Description    string          `json:"description,omitempty"`
	Status         string          `json:"status,omitempty"`
	OrganizationID *int64          `json:"organization_id,omitempty"`
	ParentID       *int64          `json:"parent_id,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
	CreatedBy      string          `json:"created_by,omitempty"`
}

// ListResourcesRequest holds parameters for listing resources.
type ListResourcesRequest struct {
	Type           []string `json:"type,omitempty"`
	Status         []string `json:"status,omitempty"`
	OrganizationID *int64   `json:"organization_id,omitempty"`
	ParentID       *int64   `json:"parent_id,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	Search         string   `json:"search,omitempty"`
	Sort           string   `json:"sort,omitempty"`
	Limit          int      `json:"limit,omitempty"`
	Offset         int      `json:"offset,omitempty"`
}

// ListResourcesResponse is the response from ListResources.
type ListResourcesResponse struct {
	Resources []*model.Resource `json:"resources"`
	Total     int               `json:"total"`
}

// UpdateResourceRequest holds optional parameters for updating a resource.
// Nil pointer fields mean "don't change"; an id of 0 clears the field.
type UpdateResourceRequest struct {
	Name           *string         `json:"name,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Status         *string         `json:"status,omitempty"`
	Slug           *string         `json:"slug,omitempty"`
	OrganizationID *int64          `json:"organization_id,omitempty"`
	ParentID       *int64          `json:"parent_id,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Tags           []string        `json:"tags,omitempty"`
}

// AddRelationRequest holds parameters for adding a relation.
type AddRelationRequest struct {
	SourceID  int64  `json:"-"`
	TargetID  int64  `json:"target_id"`
	Type      string `json:"type"`
	Note      string `json:"note,omitempty"`
	CreatedBy string `json:"created_by,omitempty"`
}

// GraphRequest holds parameters for the graph endpoint.
type GraphRequest struct {
	Root                string   // "type:id"
	Types               []string // type filter; empty = all
	IncludeHierarchy    *bool
	IncludeDependencies *bool
	MaxHops             int
	MaxNodes            int
}

// TreeRequest holds filter parameters for the tree endpoint.
type TreeRequest struct {
	Type           []string
	OrganizationID *int64
	Status         []string
}

// TreeResponse is the response from GetTree.
type TreeResponse struct {
	Roots []*tree.Node `json:"roots"`
	Total int          `json:"total"`
}
