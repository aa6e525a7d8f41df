// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package library persists the user's reference library in SQLite and
// derives the interest profile the ranking engine scores against.
package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paperwatch/internal/rank"
	"github.com/pdiddy/paperwatch/pkg/types"
)

const dbFile = "library.db"

// Store manages the reference library SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the library database at dataDir/library.db and
// creates the schema if it does not exist.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening library database: %w", err)
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
		`CREATE TABLE IF NOT EXISTS papers (
			identifier TEXT PRIMARY KEY,
			raw_identifier TEXT,
			title TEXT,
			abstract TEXT,
			authors TEXT,
			venue TEXT,
			published TEXT,
			source TEXT,
			added_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_papers_venue ON papers(venue)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// ImportSummary holds counts from a library import run.
type ImportSummary struct {
	Added   int
	Updated int
	Skipped int
}

// Total returns the number of records processed.
func (s ImportSummary) Total() int {
	return s.Added + s.Updated + s.Skipped
}

// Import upserts papers into the library, keyed by normalized
// identifier so re-importing the same export is idempotent. Records
// without a usable identifier are skipped with a diagnostic.
func (s *Store) Import(ctx context.Context, papers []types.LibraryPaper, w io.Writer) (ImportSummary, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var summary ImportSummary
	for _, p := range papers {
		id := rank.NormalizeIdentifier(p.Identifier)
		if id == "" {
			fmt.Fprintf(w, "skipped %q: no identifier\n", p.Title)
			summary.Skipped++
			continue
		}

		var exists int
		err := tx.QueryRowContext(ctx,
			`SELECT count(*) FROM papers WHERE identifier = ?`, id,
		).Scan(&exists)
		if err != nil {
			return summary, fmt.Errorf("checking paper %s: %w", id, err)
		}

		authorsJSON, _ := json.Marshal(p.Authors)
		published := ""
		if !p.Published.IsZero() {
			published = p.Published.UTC().Format(time.RFC3339)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO papers (identifier, raw_identifier, title, abstract, authors, venue, published, source, added_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(identifier) DO UPDATE SET
				raw_identifier=excluded.raw_identifier, title=excluded.title,
				abstract=excluded.abstract, authors=excluded.authors,
				venue=excluded.venue, published=excluded.published,
				source=excluded.source`,
			id, p.Identifier, p.Title, p.Abstract, string(authorsJSON),
			p.Venue, published, p.Source, time.Now().UTC().Format(time.RFC3339),
		)
		if err != nil {
			return summary, fmt.Errorf("upserting paper %s: %w", id, err)
		}

		if exists > 0 {
			summary.Updated++
		} else {
			summary.Added++
		}
	}

	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("committing import: %w", err)
	}

	fmt.Fprintf(w, "imported %d papers: %d added, %d updated, %d skipped\n",
		summary.Total(), summary.Added, summary.Updated, summary.Skipped)
	return summary, nil
}

// All returns every library paper ordered by identifier.
func (s *Store) All(ctx context.Context) ([]types.LibraryPaper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT identifier, title, abstract, authors, venue, published, source
		 FROM papers ORDER BY identifier`)
	if err != nil {
		return nil, fmt.Errorf("querying papers: %w", err)
	}
	defer rows.Close()

	var papers []types.LibraryPaper
	for rows.Next() {
		var p types.LibraryPaper
		var authorsJSON, published string
		if err := rows.Scan(&p.Identifier, &p.Title, &p.Abstract, &authorsJSON, &p.Venue, &published, &p.Source); err != nil {
			return nil, fmt.Errorf("scanning paper: %w", err)
		}
		if authorsJSON != "" {
			if err := json.Unmarshal([]byte(authorsJSON), &p.Authors); err != nil {
				return nil, fmt.Errorf("parsing authors for %s: %w", p.Identifier, err)
			}
		}
		if published != "" {
			t, err := time.Parse(time.RFC3339, published)
			if err != nil {
				return nil, fmt.Errorf("parsing date for %s: %w", p.Identifier, err)
			}
			p.Published = t
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// Count returns the number of papers in the library.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM papers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting papers: %w", err)
	}
	return n, nil
}

// IdentifierSet returns the set of normalized identifiers in the
// library, for candidate deduplication.
func (s *Store) IdentifierSet(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT identifier FROM papers`)
	if err != nil {
		return nil, fmt.Errorf("querying identifiers: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning identifier: %w", err)
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}

// SignatureSet returns the set of fuzzy title-author signatures of the
// library papers, for candidate deduplication across identifier schemes.
func (s *Store) SignatureSet(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT title, authors FROM papers`)
	if err != nil {
		return nil, fmt.Errorf("querying signatures: %w", err)
	}
	defer rows.Close()

	sigs := make(map[string]struct{})
	for rows.Next() {
		var title, authorsJSON string
		if err := rows.Scan(&title, &authorsJSON); err != nil {
			return nil, fmt.Errorf("scanning signature row: %w", err)
		}
		var authors []string
		if authorsJSON != "" {
			if err := json.Unmarshal([]byte(authorsJSON), &authors); err != nil {
				return nil, fmt.Errorf("parsing authors: %w", err)
			}
		}
		if sig := rank.Signature(title, authors); sig != "" {
			sigs[sig] = struct{}{}
		}
	}
	return sigs, rows.Err()
}
