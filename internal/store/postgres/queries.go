package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/quarrylabs/atlas/internal/graph"
	"github.com/quarrylabs/atlas/internal/model"
)

// resourceColumns is the column list used for SELECT statements on the resources table.
const resourceColumns = `id, slug, type, name, description, status,
	organization_id, parent_id, metadata, created_at, created_by, updated_at`

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func queryCreateResource(ctx context.Context, db executor, r *model.Resource) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO resources (
			slug, type, name, description, status,
			organization_id, parent_id, metadata, created_by
		) VALUES (
			$1, $2, $3, $4, $5,
			$6, $7, $8, $9
		)
		RETURNING id, created_at, updated_at`,
		nullString(r.Slug),
		string(r.Type),
		r.Name,
		r.Description,
		string(r.Status),
		nullInt64Ptr(r.OrganizationID),
		nullInt64Ptr(r.ParentID),
		jsonbBytes(r.Metadata),
		r.CreatedBy,
	).Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
}

func queryGetResource(ctx context.Context, db executor, id int64) (*model.Resource, error) {
	row := db.QueryRowContext(ctx, `SELECT `+resourceColumns+` FROM resources WHERE id = $1`, id)
	return hydrateResource(ctx, db, row)
}

func queryGetResourceBySlug(ctx context.Context, db executor, slug string) (*model.Resource, error) {
	row := db.QueryRowContext(ctx, `SELECT `+resourceColumns+` FROM resources WHERE slug = $1`, slug)
	return hydrateResource(ctx, db, row)
}

// hydrateResource scans a resource row and attaches its tags and relations.
func hydrateResource(ctx context.Context, db executor, row scannable) (*model.Resource, error) {
	r, err := scanResource(row)
	if err != nil {
		return nil, err
	}

	tags, err := queryGetTags(ctx, db, r.ID)
	if err != nil {
		return nil, err
	}
	r.Tags = tags

	rels, err := queryGetRelations(ctx, db, r.ID)
	if err != nil {
		return nil, err
	}
	r.Relations = rels

	return r, nil
}

func queryListResources(ctx context.Context, db executor, filter model.ResourceFilter) ([]*model.Resource, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if len(filter.Type) > 0 {
		placeholders := make([]string, len(filter.Type))
		for i, t := range filter.Type {
			placeholders[i] = nextArg()
			args = append(args, string(t))
		}
		whereClauses = append(whereClauses, "type IN ("+strings.Join(placeholders, ", ")+")")
	}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			placeholders[i] = nextArg()
			args = append(args, string(s))
		}
		whereClauses = append(whereClauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}

	if filter.OrganizationID != nil {
		whereClauses = append(whereClauses, "organization_id = "+nextArg())
		args = append(args, *filter.OrganizationID)
	}

	if filter.ParentID != nil {
		whereClauses = append(whereClauses, "parent_id = "+nextArg())
		args = append(args, *filter.ParentID)
	}

	if len(filter.Tags) > 0 {
		for _, tag := range filter.Tags {
			p := nextArg()
			whereClauses = append(whereClauses,
				fmt.Sprintf("EXISTS (SELECT 1 FROM tags WHERE tags.resource_id = resources.id AND tags.tag = %s)", p))
			args = append(args, tag)
		}
	}

	if filter.Search != "" {
		p := nextArg()
		whereClauses = append(whereClauses,
			fmt.Sprintf("(name ILIKE '%%' || %s || '%%' OR description ILIKE '%%' || %s || '%%')", p, p))
		args = append(args, filter.Search)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// Single query with COUNT(*) OVER() to get total and rows atomically.
	dataQuery := "SELECT COUNT(*) OVER() AS total_count, " + resourceColumns + " FROM resources" + whereSQL + " ORDER BY " + parseSortClause(filter.Sort)

	if filter.Limit > 0 {
		dataQuery += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		dataQuery += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, dataQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var resources []*model.Resource
	var total int
	for rows.Next() {
		r, t, err := scanResourceWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan resources: %w", err)
		}
		total = t
		resources = append(resources, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("scan resources: %w", err)
	}

	return resources, total, nil
}

func queryListChildren(ctx context.Context, db executor, parentID int64) ([]*model.Resource, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT `+resourceColumns+` FROM resources
		WHERE parent_id = $1
		ORDER BY type, id`,
		parentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanResources(rows)
}

func queryUpdateResource(ctx context.Context, db executor, r *model.Resource) error {
	return db.QueryRowContext(ctx, `
		UPDATE resources SET
			slug = $2,
			type = $3,
			name = $4,
			description = $5,
			status = $6,
			organization_id = $7,
			parent_id = $8,
			metadata = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`,
		r.ID,
		nullString(r.Slug),
		string(r.Type),
		r.Name,
		r.Description,
		string(r.Status),
		nullInt64Ptr(r.OrganizationID),
		nullInt64Ptr(r.ParentID),
		jsonbBytes(r.Metadata),
	).Scan(&r.UpdatedAt)
}

func queryDeleteResource(ctx context.Context, db executor, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func queryAddRelation(ctx context.Context, db executor, rel *model.Relation) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO relations (source_id, target_id, type, created_by, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		rel.SourceID,
		rel.TargetID,
		string(rel.Type),
		rel.CreatedBy,
		rel.Note,
	).Scan(&rel.CreatedAt)
}

func queryRemoveRelation(ctx context.Context, db executor, sourceID, targetID int64, relType model.RelationType) error {
	_, err := db.ExecContext(ctx, `
		DELETE FROM relations
		WHERE source_id = $1 AND target_id = $2 AND type = $3`,
		sourceID, targetID, string(relType),
	)
	return err
}

func queryGetRelations(ctx context.Context, db executor, resourceID int64) ([]*model.Relation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT source_id, target_id, type, created_at, created_by, note
		FROM relations
		WHERE source_id = $1 OR target_id = $1
		ORDER BY created_at ASC`,
		resourceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRelations(rows)
}

func queryAddTag(ctx context.Context, db executor, resourceID int64, tag string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO tags (resource_id, tag)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`,
		resourceID, tag,
	)
	return err
}

func queryRemoveTag(ctx context.Context, db executor, resourceID int64, tag string) error {
	_, err := db.ExecContext(ctx, `
		DELETE FROM tags
		WHERE resource_id = $1 AND tag = $2`,
		resourceID, tag,
	)
	return err
}

func queryGetTags(ctx context.Context, db executor, resourceID int64) ([]string, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT tag FROM tags WHERE resource_id = $1 ORDER BY tag`,
		resourceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

// graphRecordColumns is the lean column list the traversal needs.
const graphRecordColumns = `id, type, name, organization_id, parent_id`

func queryGetNeighborhood(ctx context.Context, db executor, ref model.ResourceRef) (*graph.Neighborhood, error) {
	nb := &graph.Neighborhood{}

	row := db.QueryRowContext(ctx, `
		SELECT `+graphRecordColumns+` FROM resources
		WHERE id = $1 AND type = $2`,
		ref.ID, string(ref.Type),
	)
	self, err := scanGraphRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nb, nil
	}
	if err != nil {
		return nil, fmt.Errorf("neighborhood: self: %w", err)
	}
	nb.Self = self

	if self.ParentID != 0 {
		row := db.QueryRowContext(ctx, `
			SELECT `+graphRecordColumns+` FROM resources WHERE id = $1`,
			self.ParentID,
		)
		parent, err := scanGraphRecord(row)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			// Dangling parent pointer; the resource stands alone.
		case err != nil:
			return nil, fmt.Errorf("neighborhood: parent: %w", err)
		default:
			nb.Parent = parent
		}
	}

	childRows, err := db.QueryContext(ctx, `
		SELECT `+graphRecordColumns+` FROM resources
		WHERE parent_id = $1
		ORDER BY type, id`,
		ref.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("neighborhood: children: %w", err)
	}
	defer childRows.Close()
	for childRows.Next() {
		child, err := scanGraphRecord(childRows)
		if err != nil {
			return nil, fmt.Errorf("neighborhood: scan child: %w", err)
		}
		nb.Children = append(nb.Children, *child)
	}
	if err := childRows.Err(); err != nil {
		return nil, fmt.Errorf("neighborhood: child rows: %w", err)
	}

	depRows, err := db.QueryContext(ctx, `
		SELECT rel.source_id, rel.type,
			peer.id, peer.type, peer.name, peer.organization_id, peer.parent_id
		FROM relations rel
		JOIN resources peer
			ON peer.id = CASE WHEN rel.source_id = $1 THEN rel.target_id ELSE rel.source_id END
		WHERE rel.source_id = $1 OR rel.target_id = $1
		ORDER BY peer.type, peer.id`,
		ref.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("neighborhood: relations: %w", err)
	}
	defer depRows.Close()
	for depRows.Next() {
		var (
			sourceID int64
			relType  string
		)
		peer := graph.Record{}
		var typ string
		var orgID, parentID sql.NullInt64
		if err := depRows.Scan(&sourceID, &relType, &peer.Ref.ID, &typ, &peer.Name, &orgID, &parentID); err != nil {
			return nil, fmt.Errorf("neighborhood: scan relation: %w", err)
		}
		peer.Ref.Type = model.ResourceType(typ)
		peer.OrganizationID = orgID.Int64
		peer.ParentID = parentID.Int64
		nb.Dependencies = append(nb.Dependencies, graph.Dependency{
			Peer:     peer,
			Outbound: sourceID == ref.ID,
			Label:    relType,
		})
	}
	if err := depRows.Err(); err != nil {
		return nil, fmt.Errorf("neighborhood: relation rows: %w", err)
	}

	return nb, nil
}

func queryGetStats(ctx context.Context, db executor) (*model.InventoryStats, error) {
	stats := &model.InventoryStats{}
	err := db.QueryRowContext(ctx, `
		SELECT
			COALESCE(SUM(CASE WHEN type = 'organization' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'entity' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'identity' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'project' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'milestone' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN type = 'issue' THEN 1 ELSE 0 END), 0),
			(SELECT COUNT(*) FROM relations)
		FROM resources`).Scan(
		&stats.TotalOrganizations,
		&stats.TotalEntities,
		&stats.TotalIdentities,
		&stats.TotalProjects,
		&stats.TotalMilestones,
		&stats.TotalIssues,
		&stats.TotalRelations,
	)
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

func queryRecordEvent(ctx context.Context, db executor, e *model.Event) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO events (topic, resource_id, actor, payload)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		e.Topic, e.ResourceID, e.Actor, []byte(e.Payload),
	).Scan(&e.ID, &e.CreatedAt)
}

func queryGetEvents(ctx context.Context, db executor, resourceID int64) ([]*model.Event, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, topic, resource_id, actor, payload, created_at
		FROM events
		WHERE resource_id = $1
		ORDER BY created_at ASC`,
		resourceID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

func querySetConfig(ctx context.Context, db executor, c *model.Config) error {
	return db.QueryRowContext(ctx, `
		INSERT INTO configs (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()
		RETURNING created_at, updated_at`,
		c.Key, []byte(c.Value),
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func queryGetConfig(ctx context.Context, db executor, key string) (*model.Config, error) {
	row := db.QueryRowContext(ctx, `
		SELECT key, value, created_at, updated_at
		FROM configs WHERE key = $1`, key)
	return scanConfig(row)
}

func queryListConfigs(ctx context.Context, db executor, namespace string) ([]*model.Config, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT key, value, created_at, updated_at
		FROM configs WHERE key LIKE $1 || ':%'
		ORDER BY key`, namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConfigs(rows)
}

func queryListAllConfigs(ctx context.Context, db executor) ([]*model.Config, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT key, value, created_at, updated_at
		FROM configs ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanConfigs(rows)
}

func queryDeleteConfig(ctx context.Context, db executor, key string) error {
	res, err := db.ExecContext(ctx, `DELETE FROM configs WHERE key = $1`, key)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func parseSortClause(sort string) string {
	if sort == "" {
		return "name ASC"
	}
	desc := strings.HasPrefix(sort, "-")
	col := strings.TrimPrefix(sort, "-")
	allowed := map[string]bool{
		"name": true, "created_at": true, "updated_at": true,
		"status": true, "type": true,
	}
	if !allowed[col] {
		return "name ASC"
	}
	if desc {
		return col + " DESC"
	}
	return col + " ASC"
}
