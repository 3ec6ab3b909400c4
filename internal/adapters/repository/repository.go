// Package repository implements the result store on sqlite. It only
// supplies read-only row sets to the analytics engine; every derived
// number is computed downstream. Writes exist for seeding and tests.
package repository

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/digilab/metalab/internal/domain/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// dateLayout is how event dates are stored (day resolution, like the
// source data).
const dateLayout = "2006-01-02"

// Repository reads result rows from sqlite.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the sqlite database at path.
func Open(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Repository{db: db}, nil
}

// New wraps an existing database handle.
func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init applies the embedded schema.
func (r *Repository) Init(ctx context.Context) error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, string(schema)); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close releases the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

// filterClause renders a model.Filter into SQL conditions on the
// tournaments alias t. Conditions are parameterized; the returned args
// line up with the placeholders.
func filterClause(f model.Filter) (string, []any) {
	clause := ""
	var args []any
	if f.Format != "" {
		clause += " AND t.format = ?"
		args = append(args, f.Format)
	}
	if f.EventType != "" {
		clause += " AND t.event_type = ?"
		args = append(args, f.EventType)
	}
	return clause, args
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse event date %q: %w", s, err)
	}
	return t, nil
}
