package model

// ResourceFilter holds criteria for querying resources.
type ResourceFilter struct {
	Type           []ResourceType   `json:"type,omitempty"`
	Status         []ResourceStatus `json:"status,omitempty"`
	OrganizationID *int64           `json:"organization_id,omitempty"`
	ParentID       *int64           `json:"parent_id,omitempty"`
	Tags           []string         `json:"tags,omitempty"`
	Search         string           `json:"search,omitempty"` // full-text search on name/description
	Sort           string           `json:"sort,omitempty"`   // e.g. "-updated_at", "name"; prefix "-" = descending
	Limit          int              `json:"limit,omitempty"`
	Offset         int              `json:"offset,omitempty"`
}
