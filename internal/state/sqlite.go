package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/leapstack-labs/argtable/pkg/core"
)

// timestampLayout is fixed-width so that text order in created_at is time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite state store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	// Enable foreign keys, and WAL mode for file databases
	dsn := path + "?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		dsn += "&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// Every connection to :memory: is a separate database
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Path returns the path the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}

func (s *SQLiteStore) clock() time.Time {
	if s.now != nil {
		return s.now().UTC()
	}
	return time.Now().UTC()
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}

// SaveSnapshot stores descriptors in order under a new snapshot.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, source string, descriptors []core.Descriptor) (*Snapshot, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	snap := &Snapshot{
		ID:          generateID(),
		Source:      source,
		CreatedAt:   s.clock(),
		Descriptors: cloneDescriptors(descriptors),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, source, created_at) VALUES (?, ?, ?)`,
		snap.ID, snap.Source, snap.CreatedAt.Format(timestampLayout),
	); err != nil {
		return nil, fmt.Errorf("failed to create snapshot: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO signatures (snapshot_id, position, name, params) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, d := range snap.Descriptors {
		params := d.Params
		if params == nil {
			params = []string{}
		}
		paramsJSON, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("failed to encode params for %s: %w", d.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, snap.ID, i, d.Name, string(paramsJSON)); err != nil {
			return nil, fmt.Errorf("failed to insert signature %s: %w", d.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit snapshot: %w", err)
	}
	return snap, nil
}

// GetSnapshot retrieves a snapshot by ID.
func (s *SQLiteStore) GetSnapshot(ctx context.Context, id string) (*Snapshot, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, created_at FROM snapshots WHERE id = ?`, id)
	return s.scanSnapshot(ctx, row)
}

// LatestSnapshot retrieves the most recently stored snapshot.
// It returns ErrNoSnapshot when the store is empty.
func (s *SQLiteStore) LatestSnapshot(ctx context.Context) (*Snapshot, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, created_at FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1`)
	return s.scanSnapshot(ctx, row)
}

// ListSnapshots returns snapshot headers, newest first, without descriptors.
func (s *SQLiteStore) ListSnapshots(ctx context.Context) ([]*Snapshot, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, source, created_at FROM snapshots ORDER BY created_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snaps []*Snapshot
	for rows.Next() {
		snap := &Snapshot{}
		var createdAt string
		if err := rows.Scan(&snap.ID, &snap.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		if snap.CreatedAt, err = parseTimestamp(createdAt); err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

func (s *SQLiteStore) scanSnapshot(ctx context.Context, row *sql.Row) (*Snapshot, error) {
	snap := &Snapshot{}
	var createdAt string
	err := row.Scan(&snap.ID, &snap.Source, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	if snap.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, err
	}

	descriptors, err := s.getDescriptors(ctx, snap.ID)
	if err != nil {
		return nil, err
	}
	snap.Descriptors = descriptors
	return snap, nil
}

func (s *SQLiteStore) getDescriptors(ctx context.Context, snapshotID string) ([]core.Descriptor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, params FROM signatures WHERE snapshot_id = ? ORDER BY position`, snapshotID)
	if err != nil {
		return nil, fmt.Errorf("failed to get signatures: %w", err)
	}
	defer func() { _ = rows.Close() }()

	descriptors := []core.Descriptor{}
	for rows.Next() {
		var d core.Descriptor
		var paramsJSON string
		if err := rows.Scan(&d.Name, &paramsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan signature: %w", err)
		}
		if err := json.Unmarshal([]byte(paramsJSON), &d.Params); err != nil {
			return nil, fmt.Errorf("invalid params for %s: %w", d.Name, err)
		}
		if d.Params == nil {
			d.Params = []string{}
		}
		descriptors = append(descriptors, d)
	}
	return descriptors, rows.Err()
}

func parseTimestamp(v string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid snapshot timestamp %q: %w", v, err)
	}
	return t, nil
}

// cloneDescriptors copies descriptors and their parameter lists.
func cloneDescriptors(descriptors []core.Descriptor) []core.Descriptor {
	out := make([]core.Descriptor, len(descriptors))
	for i, d := range descriptors {
		out[i] = core.Descriptor{Name: d.Name, Params: slices.Clone(d.Params)}
	}
	return out
}
