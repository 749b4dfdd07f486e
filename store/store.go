// Package store keeps a history of recognized equations in SQLite.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS equations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	signature TEXT NOT NULL,
	latex TEXT NOT NULL DEFAULT '',
	expression TEXT NOT NULL DEFAULT '',
	value TEXT NOT NULL,
	backend TEXT NOT NULL DEFAULT '',
	minX REAL NOT NULL DEFAULT 0,
	minY REAL NOT NULL DEFAULT 0,
	maxX REAL NOT NULL DEFAULT 0,
	maxY REAL NOT NULL DEFAULT 0,
	createdAt REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_equations_created ON equations(createdAt);
`

// Equation is one displayed answer.
type Equation struct {
	ID         int64
	Signature  string
	Latex      string
	Expression string
	Value      string
	Backend    string
	MinX, MinY float64
	MaxX, MaxY float64
	CreatedAt  time.Time
}

type Store struct {
	db *sql.DB
}

// DefaultPath returns the database location under the user config dir.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "inkcalc", "equations.sqlite")
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory database.
func Open(path string) (*Store, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
			return nil, errors.Wrap(err, "create database dir")
		}
		dsn = "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open database")
	}
	// one connection keeps ":memory:" a single database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "create schema")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save appends an equation. CreatedAt defaults to now.
func (s *Store) Save(ctx context.Context, e Equation) error {
	if e.Value == "" {
		return errors.New("store: equation without value")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO equations (signature, latex, expression, value, backend, minX, minY, maxX, maxY, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Signature, e.Latex, e.Expression, e.Value, e.Backend,
		e.MinX, e.MinY, e.MaxX, e.MaxY, toUnix(e.CreatedAt))
	return errors.Wrap(err, "insert equation")
}

// Recent returns up to limit equations, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Equation, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, signature, latex, expression, value, backend, minX, minY, maxX, maxY, createdAt
		FROM equations
		ORDER BY createdAt DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query equations")
	}
	defer rows.Close()

	var out []Equation
	for rows.Next() {
		var e Equation
		var createdAt float64
		if err := rows.Scan(&e.ID, &e.Signature, &e.Latex, &e.Expression, &e.Value, &e.Backend,
			&e.MinX, &e.MinY, &e.MaxX, &e.MaxY, &createdAt); err != nil {
			return nil, errors.Wrap(err, "scan equation")
		}
		e.CreatedAt = fromUnix(createdAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

// BySignature returns the latest equation stored for a cluster signature.
func (s *Store) BySignature(ctx context.Context, signature string) (*Equation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, signature, latex, expression, value, backend, minX, minY, maxX, maxY, createdAt
		FROM equations
		WHERE signature = ?
		ORDER BY createdAt DESC, id DESC
		LIMIT 1
	`, signature)

	var e Equation
	var createdAt float64
	if err := row.Scan(&e.ID, &e.Signature, &e.Latex, &e.Expression, &e.Value, &e.Backend,
		&e.MinX, &e.MinY, &e.MaxX, &e.MaxY, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, "scan equation")
	}
	e.CreatedAt = fromUnix(createdAt)
	return &e, nil
}

func toUnix(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func fromUnix(f float64) time.Time {
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
