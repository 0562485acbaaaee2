package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/quarrylabs/atlas/internal/events"
	"github.com/quarrylabs/atlas/internal/graph"
	"github.com/quarrylabs/atlas/internal/model"
	"github.com/quarrylabs/atlas/internal/store"
)

// AtlasServer serves the inventory HTTP API.
type AtlasServer struct {
	store     store.Store
	publisher events.Publisher
	assembler *graph.Assembler

	// graphMaxNodes caps the per-request node budget for /v1/graph.
	graphMaxNodes int
}

// NewAtlasServer returns a new AtlasServer backed by the given store and
// publisher. graphMaxNodes caps graph traversal budgets; 0 uses the default.
func NewAtlasServer(s store.Store, p events.Publisher, graphMaxNodes int) *AtlasServer {
	if graphMaxNodes < 1 {
		graphMaxNodes = graph.DefaultMaxNodes
	}
	return &AtlasServer{
		store:         s,
		publisher:     p,
		assembler:     graph.New(&storeSource{store: s}),
		graphMaxNodes: graphMaxNodes,
	}
}

// storeSource adapts store.Store to the graph.Source interface.
type storeSource struct {
	store store.Store
}

func (ss *storeSource) Neighborhood(ctx context.Context, ref model.ResourceRef) (*graph.Neighborhood, error) {
	return ss.store.GetNeighborhood(ctx, ref)
}

// recordAndPublish persists an event to the store and publishes it to NATS.
// Both operations are best-effort; failures are logged but do not block the caller.
func (s *AtlasServer) recordAndPublish(ctx context.Context, topic string, resourceID int64, actor string, event any) {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Warn("failed to marshal event", "topic", topic, "resource_id", resourceID, "error", err)
		return
	}
	if err := s.store.RecordEvent(ctx, &model.Event{
		Topic:      topic,
		ResourceID: resourceID,
		Actor:      actor,
		Payload:    payload,
	}); err != nil {
		slog.Warn("failed to record event", "topic", topic, "resource_id", resourceID, "error", err)
	}
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		slog.Warn("failed to publish event", "topic", topic, "resource_id", resourceID, "error", err)
	}
}

// inputError indicates invalid user input.
// Transport layers map this to 400.
type inputError string

func (e inputError) Error() string { return string(e) }
