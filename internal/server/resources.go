package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/quarrylabs/atlas/internal/events"
	"github.com/quarrylabs/atlas/internal/idgen"
	"github.com/quarrylabs/atlas/internal/model"
	"github.com/quarrylabs/atlas/internal/store"
)

// slugPrefixes maps resource types to their slug prefix.
var slugPrefixes = map[model.ResourceType]string{
	model.TypeOrganization: "org-",
	model.TypeEntity:       "ent-",
	model.TypeIdentity:     "idn-",
	model.TypeProject:      "prj-",
	model.TypeMilestone:    "mls-",
	model.TypeIssue:        "iss-",
}

// createResourceInput holds transport-agnostic parameters for creating a resource.
type createResourceInput struct {
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	Slug           string          `json:"slug"`
	Description    string          `json:"description"`
	Status         string          `json:"status"`
	OrganizationID *int64          `json:"organization_id"`
	ParentID       *int64          `json:"parent_id"`
	Metadata       json.RawMessage `json:"metadata"`
	Tags           []string        `json:"tags"`
	CreatedBy      string          `json:"created_by"`
}

// createResource validates input, persists a new resource with tags, and
// publishes a ResourceCreated event. Returns inputError for validation failures.
func (s *AtlasServer) createResource(ctx context.Context, in createResourceInput) (*model.Resource, error) {
	if in.Name == "" {
		return nil, inputError("name is required")
	}

	resourceType := model.ResourceType(in.Type)
	if !resourceType.IsValid() {
		return nil, inputError("unknown resource type " + in.Type)
	}

	status := model.ResourceStatus(in.Status)
	if in.Status == "" {
		status = model.StatusActive
	}

	slug := in.Slug
	if slug == "" {
		prefix, ok := slugPrefixes[resourceType]
		if !ok {
			prefix = idgen.DefaultPrefix
		}
		generated, err := idgen.GenerateWithPrefix(prefix)
		if err != nil {
			return nil, fmt.Errorf("failed to generate slug: %w", err)
		}
		slug = generated
	}

	resource := &model.Resource{
		Slug:           slug,
		Type:           resourceType,
		Name:           in.Name,
		Description:    in.Description,
		Status:         status,
		OrganizationID: in.OrganizationID,
		ParentID:       in.ParentID,
		CreatedBy:      in.CreatedBy,
		Tags:           in.Tags,
	}
	if len(in.Metadata) > 0 {
		resource.Metadata = in.Metadata
	}

	if err := model.ValidateResource(resource); err != nil {
		return nil, inputError("invalid resource: " + err.Error())
	}

	// Resource insert and tag inserts are atomic.
	err := s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.CreateResource(ctx, resource); err != nil {
			return fmt.Errorf("failed to create resource: %w", err)
		}
		for _, tag := range resource.Tags {
			if err := tx.AddTag(ctx, resource.ID, tag); err != nil {
				return fmt.Errorf("failed to add tag %q: %w", tag, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, events.TopicResourceCreated, resource.ID, resource.CreatedBy, events.ResourceCreated{Resource: resource})

	return resource, nil
}

// updateResourceInput holds transport-agnostic parameters for updating a resource.
// Pointer fields indicate optionality: nil means "don't change".
type updateResourceInput struct {
	Name           *string         `json:"name,omitempty"`
	Description    *string         `json:"description,omitempty"`
	Status         *string         `json:"status,omitempty"`
	Slug           *string         `json:"slug,omitempty"`
	OrganizationID *int64          `json:"organization_id,omitempty"`
	ParentID       *int64          `json:"parent_id,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Tags           []string        `json:"tags,omitempty"`

	// organizationSet / parentSet track whether the field was provided at all.
	// A provided value of 0 clears the field.
	organizationSet bool
	parentSet       bool
	tagsSet         bool
}

// updateResource applies partial updates to an existing resource, persists
// them, and publishes a ResourceUpdated event. Returns inputError for
// validation failures.
func (s *AtlasServer) updateResource(ctx context.Context, id int64, in updateResourceInput) (*model.Resource, error) {
	resource, err := s.store.GetResource(ctx, id)
	if err != nil {
		return nil, err
	}

	changes := make(map[string]any)

	if in.Name != nil {
		resource.Name = *in.Name
		changes["name"] = resource.Name
	}
	if in.Description != nil {
		resource.Description = *in.Description
		changes["description"] = resource.Description
	}
	if in.Status != nil {
		resource.Status = model.ResourceStatus(*in.Status)
		changes["status"] = resource.Status
	}
	if in.Slug != nil {
		resource.Slug = *in.Slug
		changes["slug"] = resource.Slug
	}
	// A provided id of 0 clears the pointer.
	if in.organizationSet {
		if in.OrganizationID != nil && *in.OrganizationID == 0 {
			resource.OrganizationID = nil
		} else {
			resource.OrganizationID = in.OrganizationID
		}
		changes["organization_id"] = resource.OrganizationID
	}
	if in.parentSet {
		if in.ParentID != nil && *in.ParentID == 0 {
			resource.ParentID = nil
		} else {
			resource.ParentID = in.ParentID
		}
		changes["parent_id"] = resource.ParentID
	}

	if in.Metadata != nil {
		// Merge incoming metadata into existing metadata (patch semantics).
		existing := make(map[string]any)
		if len(resource.Metadata) > 0 {
			_ = json.Unmarshal(resource.Metadata, &existing)
		}
		var patch map[string]any
		if err := json.Unmarshal(in.Metadata, &patch); err == nil {
			for k, v := range patch {
				// A null value removes the key.
				if v == nil {
					delete(existing, k)
					continue
				}
				existing[k] = v
			}
		}
		merged, mergeErr := json.Marshal(existing)
		if mergeErr != nil {
			return nil, fmt.Errorf("failed to merge metadata: %w", mergeErr)
		}
		resource.Metadata = merged
		changes["metadata"] = resource.Metadata
	}
	if in.tagsSet {
		resource.Tags = in.Tags
		changes["tags"] = resource.Tags
	}

	resource.UpdatedAt = time.Now().UTC()

	if err := model.ValidateResource(resource); err != nil {
		return nil, inputError("invalid resource: " + err.Error())
	}

	if err := s.store.UpdateResource(ctx, resource); err != nil {
		return nil, fmt.Errorf("failed to update resource: %w", err)
	}

	if _, ok := changes["tags"]; ok {
		if err := s.reconcileTags(ctx, resource.ID, resource.Tags); err != nil {
			return nil, fmt.Errorf("failed to reconcile tags: %w", err)
		}
	}

	s.recordAndPublish(ctx, events.TopicResourceUpdated, resource.ID, "", events.ResourceUpdated{
		Resource: resource,
		Changes:  changes,
	})

	return resource, nil
}

// reconcileTags compares the desired tags with the existing tags in the
// store and adds/removes as needed.
func (s *AtlasServer) reconcileTags(ctx context.Context, resourceID int64, newTags []string) error {
	existing, err := s.store.GetTags(ctx, resourceID)
	if err != nil {
		return err
	}

	existingSet := make(map[string]struct{}, len(existing))
	for _, t := range existing {
		existingSet[t] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(newTags))
	for _, t := range newTags {
		newSet[t] = struct{}{}
	}

	// Remove tags that are no longer desired.
	for _, t := range existing {
		if _, ok := newSet[t]; !ok {
			if err := s.store.RemoveTag(ctx, resourceID, t); err != nil {
				return err
			}
		}
	}
	// Add tags that are new.
	for _, t := range newTags {
		if _, ok := existingSet[t]; !ok {
			if err := s.store.AddTag(ctx, resourceID, t); err != nil {
				return err
			}
		}
	}

	return nil
}
