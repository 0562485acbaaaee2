// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/quarrylabs/atlas/internal/graph"
	"github.com/quarrylabs/atlas/internal/model"
	"github.com/quarrylabs/atlas/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) CreateResource(ctx context.Context, r *model.Resource) error {
	return queryCreateResource(ctx, s.db, r)
}

func (s *PostgresStore) GetResource(ctx context.Context, id int64) (*model.Resource, error) {
	return queryGetResource(ctx, s.db, id)
}

func (s *PostgresStore) GetResourceBySlug(ctx context.Context, slug string) (*model.Resource, error) {
	return queryGetResourceBySlug(ctx, s.db, slug)
}

func (s *PostgresStore) ListResources(ctx context.Context, filter model.ResourceFilter) ([]*model.Resource, int, error) {
	return queryListResources(ctx, s.db, filter)
}

func (s *PostgresStore) ListChildren(ctx context.Context, parentID int64) ([]*model.Resource, error) {
	return queryListChildren(ctx, s.db, parentID)
}

func (s *PostgresStore) UpdateResource(ctx context.Context, r *model.Resource) error {
	return queryUpdateResource(ctx, s.db, r)
}

func (s *PostgresStore) DeleteResource(ctx context.Context, id int64) error {
	return queryDeleteResource(ctx, s.db, id)
}

func (s *PostgresStore) AddRelation(ctx context.Context, rel *model.Relation) error {
	return queryAddRelation(ctx, s.db, rel)
}

func (s *PostgresStore) RemoveRelation(ctx context.Context, sourceID, targetID int64, relType model.RelationType) error {
	return queryRemoveRelation(ctx, s.db, sourceID, targetID, relType)
}

func (s *PostgresStore) GetRelations(ctx context.Context, resourceID int64) ([]*model.Relation, error) {
	return queryGetRelations(ctx, s.db, resourceID)
}

func (s *PostgresStore) AddTag(ctx context.Context, resourceID int64, tag string) error {
	return queryAddTag(ctx, s.db, resourceID, tag)
}

func (s *PostgresStore) RemoveTag(ctx context.Context, resourceID int64, tag string) error {
	return queryRemoveTag(ctx, s.db, resourceID, tag)
}

func (s *PostgresStore) GetTags(ctx context.Context, resourceID int64) ([]string, error) {
	return queryGetTags(ctx, s.db, resourceID)
}

func (s *PostgresStore) GetNeighborhood(ctx context.Context, ref model.ResourceRef) (*graph.Neighborhood, error) {
	return queryGetNeighborhood(ctx, s.db, ref)
}

func (s *PostgresStore) GetStats(ctx context.Context) (*model.InventoryStats, error) {
	return queryGetStats(ctx, s.db)
}

func (s *PostgresStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.db, event)
}

func (s *PostgresStore) GetEvents(ctx context.Context, resourceID int64) ([]*model.Event, error) {
	return queryGetEvents(ctx, s.db, resourceID)
}

func (s *PostgresStore) SetConfig(ctx context.Context, config *model.Config) error {
	return querySetConfig(ctx, s.db, config)
}

func (s *PostgresStore) GetConfig(ctx context.Context, key string) (*model.Config, error) {
	return queryGetConfig(ctx, s.db, key)
}

func (s *PostgresStore) ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error) {
	return queryListConfigs(ctx, s.db, namespace)
}

func (s *PostgresStore) ListAllConfigs(ctx context.Context) ([]*model.Config, error) {
	return queryListAllConfigs(ctx, s.db)
}

func (s *PostgresStore) DeleteConfig(ctx context.Context, key string) error {
	return queryDeleteConfig(ctx, s.db, key)
}

// RunInTransaction begins a database transaction, creates a txStore that
// delegates to it, calls fn, and commits on success or rolls back on error.
func (s *PostgresStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txS := &txStore{tx: tx}
	if err := fn(txS); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txStore implements store.Store using a *sql.Tx.
type txStore struct {
	tx *sql.Tx
}

// Compile-time check that txStore implements store.Store.
var _ store.Store = (*txStore)(nil)

func (s *txStore) CreateResource(ctx context.Context, r *model.Resource) error {
	return queryCreateResource(ctx, s.tx, r)
}

func (s *txStore) GetResource(ctx context.Context, id int64) (*model.Resource, error) {
	return queryGetResource(ctx, s.tx, id)
}

func (s *txStore) GetResourceBySlug(ctx context.Context, slug string) (*model.Resource, error) {
	return queryGetResourceBySlug(ctx, s.tx, slug)
}

func (s *txStore) ListResources(ctx context.Context, filter model.ResourceFilter) ([]*model.Resource, int, error) {
	return queryListResources(ctx, s.tx, filter)
}

func (s *txStore) ListChildren(ctx context.Context, parentID int64) ([]*model.Resource, error) {
	return queryListChildren(ctx, s.tx, parentID)
}

func (s *txStore) UpdateResource(ctx context.Context, r *model.Resource) error {
	return queryUpdateResource(ctx, s.tx, r)
}

func (s *txStore) DeleteResource(ctx context.Context, id int64) error {
	return queryDeleteResource(ctx, s.tx, id)
}

func (s *txStore) AddRelation(ctx context.Context, rel *model.Relation) error {
	return queryAddRelation(ctx, s.tx, rel)
}

func (s *txStore) RemoveRelation(ctx context.Context, sourceID, targetID int64, relType model.RelationType) error {
	return queryRemoveRelation(ctx, s.tx, sourceID, targetID, relType)
}

func (s *txStore) GetRelations(ctx context.Context, resourceID int64) ([]*model.Relation, error) {
	return queryGetRelations(ctx, s.tx, resourceID)
}

func (s *txStore) AddTag(ctx context.Context, resourceID int64, tag string) error {
	return queryAddTag(ctx, s.tx, resourceID, tag)
}

func (s *txStore) RemoveTag(ctx context.Context, resourceID int64, tag string) error {
	return queryRemoveTag(ctx, s.tx, resourceID, tag)
}

func (s *txStore) GetTags(ctx context.Context, resourceID int64) ([]string, error) {
	return queryGetTags(ctx, s.tx, resourceID)
}

func (s *txStore) GetNeighborhood(ctx context.Context, ref model.ResourceRef) (*graph.Neighborhood, error) {
	return queryGetNeighborhood(ctx, s.tx, ref)
}

func (s *txStore) GetStats(ctx context.Context) (*model.InventoryStats, error) {
	return queryGetStats(ctx, s.tx)
}

func (s *txStore) RecordEvent(ctx context.Context, event *model.Event) error {
	return queryRecordEvent(ctx, s.tx, event)
}

func (s *txStore) GetEvents(ctx context.Context, resourceID int64) ([]*model.Event, error) {
	return queryGetEvents(ctx, s.tx, resourceID)
}

func (s *txStore) SetConfig(ctx context.Context, config *model.Config) error {
	return querySetConfig(ctx, s.tx, config)
}

func (s *txStore) GetConfig(ctx context.Context, key string) (*model.Config, error) {
	return queryGetConfig(ctx, s.tx, key)
}

func (s *txStore) ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error) {
	return queryListConfigs(ctx, s.tx, namespace)
}

func (s *txStore) ListAllConfigs(ctx context.Context) ([]*model.Config, error) {
	return queryListAllConfigs(ctx, s.tx)
}

func (s *txStore) DeleteConfig(ctx context.Context, key string) error {
	return queryDeleteConfig(ctx, s.tx, key)
}

// RunInTransaction on a txStore reuses the existing transaction (no nesting).
func (s *txStore) RunInTransaction(ctx context.Context, fn func(tx store.Store) error) error {
	return fn(s)
}

// Close is a no-op for a transaction store; the parent store owns the connection.
func (s *txStore) Close() error {
	return nil
}
