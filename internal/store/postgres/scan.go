package postgres

import (
	"database/sql"
	"encoding/json"

	"github.com/quarrylabs/atlas/internal/graph"
	"github.com/quarrylabs/atlas/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// scanResource scans a single row into a model.Resource.
// The row must contain columns in the order defined by resourceColumns.
func scanResource(row scannable) (*model.Resource, error) {
	var r model.Resource
	var (
		slug        sql.NullString
		description sql.NullString
		orgID       sql.NullInt64
		parentID    sql.NullInt64
		metadata    []byte
		createdBy   sql.NullString
	)

	err := row.Scan(
		&r.ID,
		&slug,
		&r.Type,
		&r.Name,
		&description,
		&r.Status,
		&orgID,
		&parentID,
		&metadata,
		&r.CreatedAt,
		&createdBy,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Slug = slug.String
	r.Description = description.String
	r.CreatedBy = createdBy.String

	if orgID.Valid {
		v := orgID.Int64
		r.OrganizationID = &v
	}
	if parentID.Valid {
		v := parentID.Int64
		r.ParentID = &v
	}
	if len(metadata) > 0 {
		r.Metadata = json.RawMessage(metadata)
	}

	return &r, nil
}

// scanResourceWithTotal scans a row that has a leading total_count column
// followed by the standard resource columns. Used by queryListResources with
// COUNT(*) OVER().
func scanResourceWithTotal(row scannable) (*model.Resource, int, error) {
	var total int
	var r model.Resource
	var (
		slug        sql.NullString
		description sql.NullString
		orgID       sql.NullInt64
		parentID    sql.NullInt64
		metadata    []byte
		createdBy   sql.NullString
	)

	err := row.Scan(
		&total,
		&r.ID,
		&slug,
		&r.Type,
		&r.Name,
		&description,
		&r.Status,
		&orgID,
		&parentID,
		&metadata,
		&r.CreatedAt,
		&createdBy,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, 0, err
	}

	r.Slug = slug.String
	r.Description = description.String
	r.CreatedBy = createdBy.String

	if orgID.Valid {
		v := orgID.Int64
		r.OrganizationID = &v
	}
	if parentID.Valid {
		v := parentID.Int64
		r.ParentID = &v
	}
	if len(metadata) > 0 {
		r.Metadata = json.RawMessage(metadata)
	}

	return &r, total, nil
}

// scanResources scans multiple rows into a slice of model.Resource pointers.
func scanResources(rows *sql.Rows) ([]*model.Resource, error) {
	var resources []*model.Resource
	for rows.Next() {
		r, err := scanResource(rows)
		if err != nil {
			return nil, err
		}
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return resources, nil
}

// scanGraphRecord scans a row of graphRecordColumns into a graph.Record.
func scanGraphRecord(row scannable) (*graph.Record, error) {
	var rec graph.Record
	var (
		typ      string
		orgID    sql.NullInt64
		parentID sql.NullInt64
	)
	err := row.Scan(&rec.Ref.ID, &typ, &rec.Name, &orgID, &parentID)
	if err != nil {
		return nil, err
	}
	rec.Ref.Type = model.ResourceType(typ)
	rec.OrganizationID = orgID.Int64
	rec.ParentID = parentID.Int64
	return &rec, nil
}

// scanRelation scans a single row into a model.Relation.
func scanRelation(row scannable) (*model.Relation, error) {
	var rel model.Relation
	var (
		createdBy sql.NullString
		note      sql.NullString
	)
	err := row.Scan(
		&rel.SourceID,
		&rel.TargetID,
		&rel.Type,
		&rel.CreatedAt,
		&createdBy,
		&note,
	)
	if err != nil {
		return nil, err
	}
	rel.CreatedBy = createdBy.String
	rel.Note = note.String
	return &rel, nil
}

// scanRelations scans multiple rows into a slice of model.Relation pointers.
func scanRelations(rows *sql.Rows) ([]*model.Relation, error) {
	var rels []*model.Relation
	for rows.Next() {
		rel, err := scanRelation(rows)
		if err != nil {
			return nil, err
		}
		rels = append(rels, rel)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rels, nil
}

// scanEvent scans a single row into a model.Event.
func scanEvent(row scannable) (*model.Event, error) {
	var e model.Event
	var (
		actor   sql.NullString
		payload []byte
	)
	err := row.Scan(&e.ID, &e.Topic, &e.ResourceID, &actor, &payload, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	e.Actor = actor.String
	if len(payload) > 0 {
		e.Payload = json.RawMessage(payload)
	}
	return &e, nil
}

// scanEvents scans multiple rows into a slice of model.Event pointers.
func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// scanConfig scans a single row into a model.Config.
func scanConfig(row scannable) (*model.Config, error) {
	var c model.Config
	var value []byte
	err := row.Scan(&c.Key, &value, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Value = json.RawMessage(value)
	return &c, nil
}

// scanConfigs scans multiple rows into a slice of model.Config pointers.
func scanConfigs(rows *sql.Rows) ([]*model.Config, error) {
	var configs []*model.Config
	for rows.Next() {
		c, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		configs = append(configs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return configs, nil
}

// nullInt64Ptr converts a *int64 to a sql.NullInt64.
func nullInt64Ptr(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

// nullString converts a string to sql.NullString; empty string is null.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// jsonbBytes converts json.RawMessage to a []byte suitable for JSONB columns.
func jsonbBytes(m json.RawMessage) []byte {
	if len(m) == 0 {
		return nil
	}
	return []byte(m)
}
