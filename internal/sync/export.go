package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/quarrylabs/atlas/internal/model"
	"github.com/quarrylabs/atlas/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version       string    `json:"version"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	ResourceCount int       `json:"resource_count"`
	ConfigCount   int       `json:"config_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes all resources and configs from the store as JSONL to w.
// Resources are sorted by ID and include embedded tags and relations.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	// Fetch all resources (no filter, no limit).
	resources, _, err := s.ListResources(ctx, model.ResourceFilter{Sort: "created_at"})
	if err != nil {
		return fmt.Errorf("list resources: %w", err)
	}

	// Populate relational data for each resource.
	for _, r := range resources {
		tags, err := s.GetTags(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("get tags for %d: %w", r.ID, err)
		}
		r.Tags = tags

		rels, err := s.GetRelations(ctx, r.ID)
		if err != nil {
			return fmt.Errorf("get relations for %d: %w", r.ID, err)
		}
		r.Relations = rels
	}

	// Sort resources by ID.
	sort.Slice(resources, func(i, j int) bool {
		return resources[i].ID < resources[j].ID
	})

	// Fetch all configs.
	configs, err := s.ListAllConfigs(ctx)
	if err != nil {
		return fmt.Errorf("list configs: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	// Write header.
	if err := enc.Encode(header{
		Version:       "1",
		Type:          "header",
		Timestamp:     time.Now().UTC(),
		ResourceCount: len(resources),
		ConfigCount:   len(configs),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	// Write resources.
	for _, r := range resources {
		if err := enc.Encode(record{Type: "resource", Data: r}); err != nil {
			return fmt.Errorf("encode resource %d: %w", r.ID, err)
		}
	}

	// Write configs.
	for _, c := range configs {
		if err := enc.Encode(record{Type: "config", Data: c}); err != nil {
			return fmt.Errorf("encode config %s: %w", c.Key, err)
		}
	}

	return nil
}
