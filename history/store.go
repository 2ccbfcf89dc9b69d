package history

import (
	"context"
	"crypto/rand"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"dropbot/types"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Store is the append-only record of pipeline runs, backed by SQLite.
// A run is appended in a single transaction so it is visible in its
// entirety or not at all. There is no mutation or deletion API.
type Store struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Open opens (or creates) the history database at path and applies
// pending migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{
		db:      db,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}, nil
}

func runMigrations(db *sql.DB) error {
	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}

	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewRunID returns a fresh, time-sortable run identifier.
func (s *Store) NewRunID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Now(), s.entropy).String()
}

// Append writes a completed run to the store atomically.
func (s *Store) Append(ctx context.Context, run *types.ProcessingRun) error {
	requested, err := json.Marshal(run.RequestedIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal requested ids: %w", err)
	}
	failed, err := json.Marshal(run.FailedIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal failed ids: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, started_at, elapsed_ms, requested_ids, failed_ids)
		VALUES (?, ?, ?, ?, ?)
	`, run.RunID, run.StartedAt.UTC(), run.ElapsedMs, string(requested), string(failed))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for i, item := range run.Items {
		newTags, err := json.Marshal(item.NewTags)
		if err != nil {
			return fmt.Errorf("failed to marshal tags for %s: %w", item.ID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_items (run_id, position, bookmark_id, status, new_tags, summary, failure_kind, reason)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, run.RunID, i, item.ID, string(item.Status), string(newTags), item.Summary, item.FailureKind, item.Reason)
		if err != nil {
			return fmt.Errorf("failed to insert item %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// List returns runs in reverse-chronological order, narrowed by the
// filter. A nil filter returns everything.
func (s *Store) List(ctx context.Context, filter *types.HistoryFilter) ([]*types.ProcessingRun, error) {
	query := `
		SELECT run_id, started_at, elapsed_ms, requested_ids, failed_ids
		FROM runs
	`
	args := []interface{}{}
	if filter != nil && !filter.Since.IsZero() {
		query += " WHERE started_at >= ?"
		args = append(args, filter.Since.UTC())
	}
	query += " ORDER BY started_at DESC, run_id DESC"
	if filter != nil && filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*types.ProcessingRun
	for rows.Next() {
		var run types.ProcessingRun
		var requested, failed string
		if err := rows.Scan(&run.RunID, &run.StartedAt, &run.ElapsedMs, &requested, &failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if err := json.Unmarshal([]byte(requested), &run.RequestedIDs); err != nil {
			return nil, fmt.Errorf("failed to decode requested ids: %w", err)
		}
		if err := json.Unmarshal([]byte(failed), &run.FailedIDs); err != nil {
			return nil, fmt.Errorf("failed to decode failed ids: %w", err)
		}
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, run := range runs {
		items, err := s.loadItems(ctx, run.RunID)
		if err != nil {
			return nil, err
		}
		run.Items = items
	}
	return runs, nil
}

func (s *Store) loadItems(ctx context.Context, runID string) ([]types.ItemResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT bookmark_id, status, new_tags, summary, failure_kind, reason
		FROM run_items
		WHERE run_id = ?
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items for %s: %w", runID, err)
	}
	defer rows.Close()

	var items []types.ItemResult
	for rows.Next() {
		var item types.ItemResult
		var status, newTags string
		if err := rows.Scan(&item.ID, &status, &newTags, &item.Summary, &item.FailureKind, &item.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Status = types.ItemStatus(status)
		if err := json.Unmarshal([]byte(newTags), &item.NewTags); err != nil {
			return nil, fmt.Errorf("failed to decode tags: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
