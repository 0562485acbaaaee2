package events

import (
	"context"

	"github.com/quarrylabs/atlas/internal/model"
)

// Event topic constants
const (
	TopicResourceCreated = "atlas.resource.created"
	TopicResourceUpdated = "atlas.resource.updated"
	TopicResourceDeleted = "atlas.resource.deleted"
	TopicRelationAdded   = "atlas.relation.added"
	TopicRelationRemoved = "atlas.relation.removed"
	TopicTagAdded        = "atlas.tag.added"
	TopicTagRemoved      = "atlas.tag.removed"
)

// Event types

type ResourceCreated struct {
	Resource *model.Resource `json:"resource"`
}

type ResourceUpdated struct {
	Resource *model.Resource `json:"resource"`
	Changes  map[string]any  `json:"changes"` // field name -> new value
}

type ResourceDeleted struct {
	ResourceID int64 `json:"resource_id"`
}

type RelationAdded struct {
	Relation *model.Relation `json:"relation"`
}

type RelationRemoved struct {
	SourceID int64  `json:"source_id"`
	TargetID int64  `json:"target_id"`
	Type     string `json:"type"`
}

type TagAdded struct {
	ResourceID int64  `json:"resource_id"`
	Tag        string `json:"tag"`
}

type TagRemoved struct {
	ResourceID int64  `json:"resource_id"`
	Tag        string `json:"tag"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}

// Subscriber is the consuming side of the bus. Subscribe returns a channel
// of raw payloads for a topic plus a cancel function that unsubscribes and
// closes the channel.
type Subscriber interface {
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}
