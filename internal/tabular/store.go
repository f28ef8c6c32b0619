// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package tabular

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pubmed-harvest/pkg/types"
)

// Store holds result tables in a SQLite database, one run per table.
type Store struct {
	db *sql.DB
}

// OpenStore opens or creates the SQLite database at path and creates the
// schema if it does not exist.
func OpenStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			query TEXT,
			total_count INTEGER,
			created_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS author_rows (
			run_id TEXT NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			pmid TEXT,
			doi TEXT,
			title TEXT,
			abstract TEXT,
			year TEXT,
			month TEXT,
			day TEXT,
			journal_abbrev TEXT,
			journal TEXT,
			lastname TEXT,
			firstname TEXT,
			address TEXT,
			email TEXT,
			PRIMARY KEY (run_id, seq)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_author_rows_pmid ON author_rows(pmid)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun stores table under meta.RunID in one transaction. Row order is
// kept in the seq column.
func (s *Store) SaveRun(ctx context.Context, meta Meta, table types.ResultTable) error {
	meta = meta.withDefaults()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, query, total_count, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			query=excluded.query, total_count=excluded.total_count, created_at=excluded.created_at`,
		meta.RunID, meta.Query, meta.Count, meta.CreatedAt.UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("upserting run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM author_rows WHERE run_id = ?`, meta.RunID); err != nil {
		return fmt.Errorf("deleting old rows: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO author_rows (run_id, seq, pmid, doi, title, abstract, year, month, day,
			journal_abbrev, journal, lastname, firstname, address, email)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range table {
		if _, err := stmt.ExecContext(ctx,
			meta.RunID, i, r.PMID, r.DOI, r.Title, r.Abstract, r.Year, r.Month, r.Day,
			r.JournalAbbrev, r.Journal, r.LastName, r.FirstName, r.Address, r.Email,
		); err != nil {
			return fmt.Errorf("inserting row %d: %w", i, err)
		}
	}

	return tx.Commit()
}

// Rows returns the rows of a run in their original order.
func (s *Store) Rows(ctx context.Context, runID string) (types.ResultTable, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pmid, doi, title, abstract, year, month, day, journal_abbrev, journal,
			lastname, firstname, address, email
		 FROM author_rows WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying rows: %w", err)
	}
	defer rows.Close()

	var table types.ResultTable
	for rows.Next() {
		var r types.AuthorRow
		if err := rows.Scan(&r.PMID, &r.DOI, &r.Title, &r.Abstract, &r.Year, &r.Month, &r.Day,
			&r.JournalAbbrev, &r.Journal, &r.LastName, &r.FirstName, &r.Address, &r.Email); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		table = append(table, r)
	}
	return table, rows.Err()
}

// Runs returns the stored run metadata, newest first.
func (s *Store) Runs(ctx context.Context) ([]Meta, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, total_count, created_at FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []Meta
	for rows.Next() {
		var m Meta
		var created string
		if err := rows.Scan(&m.RunID, &m.Query, &m.Count, &created); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339, created)
		out = append(out, m)
	}
	return out, rows.Err()
}
