package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateResource checks a Resource for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the resource is valid.
func ValidateResource(r *Resource) error {
	var ve ValidationError

	// Name: required and at most 500 characters.
	name := strings.TrimSpace(r.Name)
	if name == "" {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "is required"})
	} else if len([]rune(name)) > 500 {
		ve.Errors = append(ve.Errors, FieldError{Field: "name", Message: "must be 500 characters or fewer"})
	}

	// Type: must be a valid enum value (closed set).
	if !r.Type.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "type",
			Message: fmt.Sprintf("invalid value %q", r.Type),
		})
	}

	// Status: must be a valid enum value (closed set).
	if !r.Status.IsValid() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "status",
			Message: fmt.Sprintf("invalid value %q", r.Status),
		})
	}

	// Parent: a resource cannot be its own parent. Longer cycles are
	// tolerated by the tree and graph builders, but a self-loop is always
	// a data-entry mistake.
	if r.ParentID != nil && r.ID != 0 && *r.ParentID == r.ID {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "parent_id",
			Message: "must not reference the resource itself",
		})
	}
	if r.ParentID != nil && *r.ParentID <= 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "parent_id",
			Message: fmt.Sprintf("must be a positive id, got %d", *r.ParentID),
		})
	}
	if r.OrganizationID != nil && *r.OrganizationID <= 0 {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "organization_id",
			Message: fmt.Sprintf("must be a positive id, got %d", *r.OrganizationID),
		})
	}

	// Metadata: must be valid JSON if present.
	if len(r.Metadata) > 0 && !json.Valid(r.Metadata) {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   "metadata",
			Message: "contains invalid JSON",
		})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
