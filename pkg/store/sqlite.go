package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgchart"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS charts (
	name       TEXT PRIMARY KEY,
	nodes      INTEGER NOT NULL,
	snapshot   TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
)`

// SQLiteStore keeps charts in one SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (and creates if needed) the database at path.
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidPath, "sqlite store needs a database path")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, storageErr(err, "open database")
	}
	for _, stmt := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000", sqliteSchema} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			db.Close()
			return nil, storageErr(err, "prepare database")
		}
	}
	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, snap orgchart.Snapshot) error {
	if err := errors.ValidateChartName(name); err != nil {
		return err
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return storageErr(err, "marshal chart")
	}
	now := time.Now().UnixMilli()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO charts (name, nodes, snapshot, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			nodes = excluded.nodes,
			snapshot = excluded.snapshot,
			updated_at = excluded.updated_at`,
		name, len(snap.Nodes), string(data), now, now)
	if err != nil {
		return storageErr(err, "save chart %q", name)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (orgchart.Snapshot, error) {
	if err := errors.ValidateChartName(name); err != nil {
		return orgchart.Snapshot{}, err
	}
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT snapshot FROM charts WHERE name = ?`, name).Scan(&data)
	if err == sql.ErrNoRows {
		return orgchart.Snapshot{}, notFound(name)
	}
	if err != nil {
		return orgchart.Snapshot{}, storageErr(err, "load chart %q", name)
	}
	var snap orgchart.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return orgchart.Snapshot{}, storageErr(err, "parse chart %q", name)
	}
	return snap, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateChartName(name); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM charts WHERE name = ?`, name); err != nil {
		return storageErr(err, "delete chart %q", name)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, nodes, updated_at FROM charts ORDER BY name`)
	if err != nil {
		return nil, storageErr(err, "list charts")
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var info Info
		var updated int64
		if err := rows.Scan(&info.Name, &info.Nodes, &updated); err != nil {
			return nil, storageErr(err, "list charts")
		}
		info.UpdatedAt = time.UnixMilli(updated).UTC()
		out = append(out, info)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(err, "list charts")
	}
	return out, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Path returns the database file.
func (s *SQLiteStore) Path() string { return s.path }

var _ Store = (*SQLiteStore)(nil)
