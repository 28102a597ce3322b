// Package storage provides the SQLite implementation of the Storage interface.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/codescope/codescope/internal/models"
	"github.com/codescope/codescope/internal/vector"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage opens or creates a SQLite database at dbPath and initializes the schema.
// Parent directories are created if they do not exist.
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &SQLiteStorage{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS functions (
		id TEXT PRIMARY KEY,
		package TEXT NOT NULL,
		name TEXT NOT NULL,
		signature TEXT NOT NULL,
		doc TEXT,
		file TEXT,
		start_line INTEGER,
		body TEXT,
		metadata TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_functions_package ON functions(package);
	CREATE INDEX IF NOT EXISTS idx_functions_name ON functions(name);

	CREATE TABLE IF NOT EXISTS ann_config (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		config TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stats_snapshots (
		id TEXT PRIMARY KEY,
		stats TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON stats_snapshots(created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// SaveFunction upserts a function record.
func (s *SQLiteStorage) SaveFunction(ctx context.Context, fn *models.Function) error {
	metadataJSON, err := json.Marshal(fn.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}
	now := time.Now()
	if fn.CreatedAt.IsZero() {
		fn.CreatedAt = now
	}
	fn.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO functions (id, package, name, signature, doc, file, start_line, body, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			package = excluded.package,
			name = excluded.name,
			signature = excluded.signature,
			doc = excluded.doc,
			file = excluded.file,
			start_line = excluded.start_line,
			body = excluded.body,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at`,
		fn.ID, fn.Package, fn.Name, fn.Signature, fn.Doc, fn.File, fn.StartLine, fn.Body,
		string(metadataJSON), fn.CreatedAt, fn.UpdatedAt,
	)
	return err
}

// GetFunction returns a function by ID.
func (s *SQLiteStorage) GetFunction(ctx context.Context, id string) (*models.Function, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, package, name, signature, doc, file, start_line, body, metadata, created_at, updated_at
		 FROM functions WHERE id = ?`, id)
	fn, err := scanFunction(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("function not found: %s", id)
	}
	return fn, err
}

// ListFunctions returns every stored function, ordered by package and name.
func (s *SQLiteStorage) ListFunctions(ctx context.Context) ([]*models.Function, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, package, name, signature, doc, file, start_line, body, metadata, created_at, updated_at
		 FROM functions ORDER BY package, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fns []*models.Function
	for rows.Next() {
		fn, err := scanFunction(rows)
		if err != nil {
			return nil, err
		}
		fns = append(fns, fn)
	}
	return fns, rows.Err()
}

// DeleteFunction removes a function by ID.
func (s *SQLiteStorage) DeleteFunction(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM functions WHERE id = ?`, id)
	return err
}

// CountFunctions returns the number of stored functions.
func (s *SQLiteStorage) CountFunctions(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM functions`).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanFunction(row rowScanner) (*models.Function, error) {
	var fn models.Function
	var metadataJSON string
	err := row.Scan(&fn.ID, &fn.Package, &fn.Name, &fn.Signature, &fn.Doc, &fn.File,
		&fn.StartLine, &fn.Body, &metadataJSON, &fn.CreatedAt, &fn.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if metadataJSON != "" && metadataJSON != "null" {
		if err := json.Unmarshal([]byte(metadataJSON), &fn.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
		}
	}
	return &fn, nil
}

// SaveConfig stores the active ANN configuration, replacing any previous one.
func (s *SQLiteStorage) SaveConfig(ctx context.Context, cfg vector.Config) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO ann_config (id, config, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET config = excluded.config, updated_at = excluded.updated_at`,
		string(data), time.Now())
	return err
}

// LoadConfig returns the stored ANN configuration, or nil when none was saved.
func (s *SQLiteStorage) LoadConfig(ctx context.Context) (*vector.Config, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT config FROM ann_config WHERE id = 1`).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var cfg vector.Config
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// SaveStatsSnapshot stores a point-in-time capture of index statistics.
func (s *SQLiteStorage) SaveStatsSnapshot(ctx context.Context, stats vector.Stats) (*StatsSnapshot, error) {
	snap := &StatsSnapshot{
		ID:        uuid.New().String(),
		Stats:     stats,
		CreatedAt: time.Now(),
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal stats: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO stats_snapshots (id, stats, created_at) VALUES (?, ?, ?)`,
		snap.ID, string(data), snap.CreatedAt)
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// ListStatsSnapshots returns up to limit snapshots, newest first.
func (s *SQLiteStorage) ListStatsSnapshots(ctx context.Context, limit int) ([]*StatsSnapshot, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, stats, created_at FROM stats_snapshots ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snaps []*StatsSnapshot
	for rows.Next() {
		var snap StatsSnapshot
		var data string
		if err := rows.Scan(&snap.ID, &data, &snap.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &snap.Stats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal stats: %w", err)
		}
		snaps = append(snaps, &snap)
	}
	return snaps, rows.Err()
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
