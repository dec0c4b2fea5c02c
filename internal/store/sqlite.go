package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kingrea/blueprint/internal/blueprint"
	"github.com/kingrea/blueprint/internal/workflow"
)

// sqliteTime has fixed width so updated_at sorts lexically.
const sqliteTime = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore keeps documents in a single sqlite table.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// NewSQLiteStore opens (or creates) the database at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, fmt.Errorf("store: sqlite path is required")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("store: create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// One connection keeps :memory: databases shared and serializes writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: ping database: %w", err)
	}
	s := &SQLiteStore{db: db, dbPath: dbPath}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: initialize schema: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		id TEXT PRIMARY KEY,
		stage TEXT NOT NULL,
		subject TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL,
		schema_version INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_documents_updated_at ON documents(updated_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Save upserts the document.
func (s *SQLiteStore) Save(ctx context.Context, id string, doc blueprint.Document) error {
	id, err := validateID(id)
	if err != nil {
		return err
	}
	doc = prepare(id, doc)
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
	INSERT INTO documents (id, stage, subject, body, schema_version, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		stage = excluded.stage,
		subject = excluded.subject,
		body = excluded.body,
		schema_version = excluded.schema_version,
		updated_at = excluded.updated_at
	`
	_, err = s.db.ExecContext(ctx, query,
		id,
		string(workflow.DetectStage(&doc)),
		doc.WizardContext.Subject,
		string(body),
		doc.SchemaVersion,
		doc.Timestamps.Created.UTC().Format(sqliteTime),
		doc.Timestamps.Updated.UTC().Format(sqliteTime),
	)
	if err != nil {
		return fmt.Errorf("store: save %s: %w", id, err)
	}
	return nil
}

// Load fetches a document by id.
func (s *SQLiteStore) Load(ctx context.Context, id string) (blueprint.Document, error) {
	id, err := validateID(id)
	if err != nil {
		return blueprint.Document{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var body string
	err = s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return blueprint.Document{}, ErrNotFound
	}
	if err != nil {
		return blueprint.Document{}, fmt.Errorf("store: load %s: %w", id, err)
	}
	var doc blueprint.Document
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return blueprint.Document{}, fmt.Errorf("store: decode %s: %w", id, err)
	}
	doc.Normalize()
	return doc, nil
}

// List returns document summaries, most recently updated first.
func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, stage, subject, updated_at FROM documents ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			summary Summary
			stage   string
			updated string
		)
		if err := rows.Scan(&summary.ID, &stage, &summary.Subject, &updated); err != nil {
			return nil, fmt.Errorf("store: scan: %w", err)
		}
		summary.Stage = workflow.Stage(stage)
		if t, err := time.Parse(sqliteTime, updated); err == nil {
			summary.Updated = t
		}
		out = append(out, summary)
	}
	return out, rows.Err()
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
