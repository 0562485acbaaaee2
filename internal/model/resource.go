package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ResourceType classifies an inventory resource. The set is closed;
// consumers switch exhaustively on it.
type ResourceType string

const (
	TypeOrganization ResourceType = "organization"
	TypeEntity       ResourceType = "entity"
	TypeIdentity     ResourceType = "identity"
	TypeProject      ResourceType = "project"
	TypeMilestone    ResourceType = "milestone"
	TypeIssue        ResourceType = "issue"
)

// String returns the string representation of the resource type.
func (t ResourceType) String() string {
	return string(t)
}

// IsValid checks whether the resource type is a known value.
func (t ResourceType) IsValid() bool {
	switch t {
	case TypeOrganization, TypeEntity, TypeIdentity, TypeProject, TypeMilestone, TypeIssue:
		return true
	}
	return false
}

// ResourceStatus represents the lifecycle state of a resource.
type ResourceStatus string

const (
	StatusActive   ResourceStatus = "active"
	StatusDegraded ResourceStatus = "degraded"
	StatusRetired  ResourceStatus = "retired"
)

// String returns the string representation of the status.
func (s ResourceStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s ResourceStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusDegraded, StatusRetired:
		return true
	}
	return false
}

// ResourceRef identifies a resource by type and numeric id. Its Key is the
// canonical "type:id" form that graph consumers deduplicate on.
type ResourceRef struct {
	Type ResourceType `json:"type"`
	ID   int64        `json:"id"`
}

// Key returns the canonical "type:id" node key.
func (r ResourceRef) Key() string {
	return string(r.Type) + ":" + strconv.FormatInt(r.ID, 10)
}

// ParseResourceRef parses a "type:id" string into a ResourceRef.
func ParseResourceRef(s string) (ResourceRef, error) {
	typ, idStr, ok := strings.Cut(s, ":")
	if !ok {
		return ResourceRef{}, fmt.Errorf("invalid resource ref %q: want type:id", s)
	}
	t := ResourceType(typ)
	if !t.IsValid() {
		return ResourceRef{}, fmt.Errorf("invalid resource ref %q: unknown type %q", s, typ)
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		return ResourceRef{}, fmt.Errorf("invalid resource ref %q: bad id %q", s, idStr)
	}
	return ResourceRef{Type: t, ID: id}, nil
}

// Resource is the core inventory record.
type Resource struct {
	ID             int64           `json:"id"`
	Slug           string          `json:"slug,omitempty"`
	Type           ResourceType    `json:"type"`
	Name           string          `json:"name"`
	Description    string          `json:"description,omitempty"`
	Status         ResourceStatus  `json:"status"`
	OrganizationID *int64          `json:"organization_id,omitempty"`
	ParentID       *int64          `json:"parent_id,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	CreatedBy      string          `json:"created_by,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`

	// Relational data -- populated by queries, not stored in the resources table.
	Tags      []string    `json:"tags,omitempty"`
	Relations []*Relation `json:"relations,omitempty"`
}

// Ref returns the resource's type:id reference.
func (r *Resource) Ref() ResourceRef {
	return ResourceRef{Type: r.Type, ID: r.ID}
}
