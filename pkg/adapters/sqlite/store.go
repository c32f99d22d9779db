package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/sift/pkg/definition"
	"github.com/aretw0/sift/pkg/domain"

	// Register sqlite driver
	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS definitions (
	name        TEXT PRIMARY KEY,
	body        TEXT NOT NULL,
	fingerprint TEXT NOT NULL,
	updated_at  TEXT NOT NULL
)`

// Store implements ports.DefinitionStore on a single SQLite table.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and prepares the table.
// Use ":memory:" for a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}
	if path == ":memory:" {
		// Each connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		`PRAGMA journal_mode=WAL`,
		`PRAGMA busy_timeout=5000`,
		`PRAGMA synchronous=NORMAL`,
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create definitions table: %w", err)
	}
	return &Store{db: db}, nil
}

// Save upserts the definition.
func (s *Store) Save(ctx context.Context, name string, def *definition.Definition) error {
	body, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("encode definition %s: %w", name, err)
	}
	fp, err := definition.Fingerprint(def)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO definitions (name, body, fingerprint, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			body = excluded.body,
			fingerprint = excluded.fingerprint,
			updated_at = excluded.updated_at`,
		name, string(body), fp, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save definition %s: %w", name, err)
	}
	return nil
}

// Get retrieves a definition.
func (s *Store) Get(ctx context.Context, name string) (*definition.Definition, error) {
	var body string
	err := s.db.QueryRowContext(ctx, `SELECT body FROM definitions WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDefinitionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get definition %s: %w", name, err)
	}

	var def definition.Definition
	if err := definition.Unmarshal([]byte(body), &def); err != nil {
		return nil, fmt.Errorf("decode definition %s: %w", name, err)
	}
	return &def, nil
}

// Fingerprint returns the stored fingerprint without decoding the body.
func (s *Store) Fingerprint(ctx context.Context, name string) (string, error) {
	var fp string
	err := s.db.QueryRowContext(ctx, `SELECT fingerprint FROM definitions WHERE name = ?`, name).Scan(&fp)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrDefinitionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get fingerprint %s: %w", name, err)
	}
	return fp, nil
}

// Delete removes the definition.
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM definitions WHERE name = ?`, name); err != nil {
		return fmt.Errorf("delete definition %s: %w", name, err)
	}
	return nil
}

// List returns every stored name, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM definitions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
