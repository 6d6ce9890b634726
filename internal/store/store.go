// Package store persists reference counts and target calculations in a local
// SQLite database so later runs can reuse them.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/KaramelBytes/surveyloom-cli/internal/targets"
)

// FileName is the database file created inside the data directory.
const FileName = "surveyloom.db"

// ErrNotFound is returned when the store holds no matching row.
var ErrNotFound = errors.New("store: not found")

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Store wraps the SQLite handle.
type Store struct {
	db *sqlx.DB
}

// ReferenceSet is one saved reference.
type ReferenceSet struct {
	ID         string `db:"id" json:"id"`
	Name       string `db:"name" json:"name"`
	Population int    `db:"population" json:"population"`
	Body       string `db:"body" json:"-"`
	CreatedAt  string `db:"created_at" json:"created_at"`
}

// Reference decodes the stored YAML body.
func (r ReferenceSet) Reference() (*targets.Reference, error) {
	return targets.ParseReference([]byte(r.Body))
}

// Calculation is a saved sample-size and target computation.
type Calculation struct {
	ID          string `db:"id" json:"id"`
	ReferenceID string `db:"reference_id" json:"reference_id"`
	SampleSize  int    `db:"sample_size" json:"sample_size"`
	Population  int    `db:"population" json:"population"`
	Body        string `db:"body" json:"-"`
	CreatedAt   string `db:"created_at" json:"created_at"`
}

// Plan decodes the stored plan.
func (c Calculation) Plan() (*targets.Plan, error) {
	var p targets.Plan
	if err := json.Unmarshal([]byte(c.Body), &p); err != nil {
		return nil, fmt.Errorf("decode plan %s: %w", c.ID, err)
	}
	return &p, nil
}

// New opens (creating if needed) the database in dataDir and applies the schema.
func New(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("store: create data dir: %w", err)
	}
	db, err := sqlx.Open("sqlite", filepath.Join(dataDir, FileName))
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// one writer; keeps pragmas on a single connection
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("store: pragma %q: %w", p, err)
		}
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("store: migration: %w", err)
	}
	return s, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS reference_sets (
			seq        INTEGER PRIMARY KEY AUTOINCREMENT,
			id         TEXT NOT NULL UNIQUE,
			name       TEXT NOT NULL,
			population INTEGER NOT NULL DEFAULT 0,
			body       TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS calculation_results (
			seq          INTEGER PRIMARY KEY AUTOINCREMENT,
			id           TEXT NOT NULL UNIQUE,
			reference_id TEXT NOT NULL REFERENCES reference_sets(id) ON DELETE CASCADE,
			sample_size  INTEGER NOT NULL,
			population   INTEGER NOT NULL,
			body         TEXT NOT NULL,
			created_at   TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_calc_reference ON calculation_results(reference_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func now() string { return time.Now().UTC().Format(time.RFC3339Nano) }

// SaveReference stores ref and returns the new row.
func (s *Store) SaveReference(ctx context.Context, ref *targets.Reference) (*ReferenceSet, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	body, err := yaml.Marshal(ref)
	if err != nil {
		return nil, fmt.Errorf("marshal reference: %w", err)
	}
	rs := &ReferenceSet{
		ID:         uuid.NewString(),
		Name:       ref.Name,
		Population: ref.Population,
		Body:       string(body),
		CreatedAt:  now(),
	}
	query, args, err := psql.Insert("reference_sets").
		Columns("id", "name", "population", "body", "created_at").
		Values(rs.ID, rs.Name, rs.Population, rs.Body, rs.CreatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert reference: %w", err)
	}
	return rs, nil
}

// LatestReference returns the most recently saved reference.
func (s *Store) LatestReference(ctx context.Context) (*ReferenceSet, error) {
	query, args, err := psql.Select("id", "name", "population", "body", "created_at").
		From("reference_sets").
		OrderBy("seq DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var rs ReferenceSet
	if err := s.db.GetContext(ctx, &rs, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select reference: %w", err)
	}
	return &rs, nil
}

// SaveCalculation records plan as computed from the reference referenceID.
func (s *Store) SaveCalculation(ctx context.Context, referenceID string, plan *targets.Plan) (*Calculation, error) {
	body, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("marshal plan: %w", err)
	}
	c := &Calculation{
		ID:          uuid.NewString(),
		ReferenceID: referenceID,
		SampleSize:  plan.SampleSize,
		Population:  plan.Population,
		Body:        string(body),
		CreatedAt:   now(),
	}
	query, args, err := psql.Insert("calculation_results").
		Columns("id", "reference_id", "sample_size", "population", "body", "created_at").
		Values(c.ID, c.ReferenceID, c.SampleSize, c.Population, c.Body, c.CreatedAt).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("insert calculation: %w", err)
	}
	return c, nil
}

// ListCalculations returns calculations newest first. An empty referenceID
// lists all of them; limit <= 0 means no limit.
func (s *Store) ListCalculations(ctx context.Context, referenceID string, limit int) ([]Calculation, error) {
	b := psql.Select("id", "reference_id", "sample_size", "population", "body", "created_at").
		From("calculation_results").
		OrderBy("seq DESC")
	if referenceID != "" {
		b = b.Where(sq.Eq{"reference_id": referenceID})
	}
	if limit > 0 {
		b = b.Limit(uint64(limit))
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var out []Calculation
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("select calculations: %w", err)
	}
	return out, nil
}
