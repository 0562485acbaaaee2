package model

import "time"

// RelationType categorizes the association between two resources.
// Well-known constants are provided below, but relation types are extensible.
type RelationType string

const (
	RelDependsOn RelationType = "depends-on"
	RelRelatedTo RelationType = "related-to"
	RelPartOf    RelationType = "part-of"
)

// IsValid reports whether the relation type is a non-empty string of at most 50 characters.
// Relation types are extensible, so any non-empty value within the length limit is accepted.
func (r RelationType) IsValid() bool {
	return len(r) > 0 && len(r) <= 50
}

// Relation represents a directional association between two resources.
type Relation struct {
	SourceID  int64        `json:"source_id"`
	TargetID  int64        `json:"target_id"`
	Type      RelationType `json:"type"`
	CreatedAt time.Time    `json:"created_at"`
	CreatedBy string       `json:"created_by,omitempty"`
	Note      string       `json:"note,omitempty"`
}
