// Package storage persists extraction records in a SQLite database.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/scholex/relworks/internal/paper"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

const selectPaperFields = `arxiv_id, abs_url, title, abstract, published,
	section, degraded, sparse_citations`

const selectCitationFields = `parent_id, parent_title, key, raw_text,
	title, identifier, abstract,
	bib_authors, bib_year, bib_month, bib_journal, bib_doi, bib_url`

// OpenDB opens or creates a SQLite database at the given path, creating
// parent directories as needed.
func OpenDB(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating database dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS papers (
			arxiv_id TEXT PRIMARY KEY,
			abs_url TEXT,
			title TEXT NOT NULL,
			abstract TEXT,
			published TEXT,
			section TEXT NOT NULL,
			degraded INTEGER NOT NULL DEFAULT 0,
			sparse_citations INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS citations (
			parent_id TEXT NOT NULL,
			parent_title TEXT,
			key TEXT NOT NULL,
			raw_text TEXT,
			title TEXT,
			identifier TEXT,
			abstract TEXT,
			bib_authors TEXT,
			bib_year TEXT,
			bib_month TEXT,
			bib_journal TEXT,
			bib_doi TEXT,
			bib_url TEXT,
			PRIMARY KEY (parent_id, key)
		);

		CREATE INDEX IF NOT EXISTS idx_citations_parent ON citations(parent_id);
	`

	_, err := db.Exec(schema)
	return err
}

// SaveRecord upserts a paper record and replaces its citations atomically.
func (d *DB) SaveRecord(rec *paper.Record) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO papers (arxiv_id, abs_url, title, abstract, published,
			section, degraded, sparse_citations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(arxiv_id) DO UPDATE SET
			abs_url = excluded.abs_url,
			title = excluded.title,
			abstract = excluded.abstract,
			published = excluded.published,
			section = excluded.section,
			degraded = excluded.degraded,
			sparse_citations = excluded.sparse_citations
	`, rec.ArXivID, nullableStringValue(rec.AbsURL), rec.Title,
		nullableStringValue(rec.Abstract), publishedValue(rec.Published),
		rec.Section, boolValue(rec.Degraded), boolValue(rec.SparseCitations))
	if err != nil {
		return fmt.Errorf("upserting paper %s: %w", rec.ArXivID, err)
	}

	if _, err := tx.Exec("DELETE FROM citations WHERE parent_id = ?", rec.ArXivID); err != nil {
		return fmt.Errorf("clearing citations for %s: %w", rec.ArXivID, err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO citations (` + selectCitationFields + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing citation insert: %w", err)
	}
	defer stmt.Close()

	for i := range rec.Citations {
		c := &rec.Citations[i]
		_, err := stmt.Exec(
			rec.ArXivID, nullableStringValue(c.ParentTitle), c.Key,
			nullableStringValue(c.RawText),
			nullableStringValue(c.Title), nullableStringValue(c.Identifier),
			nullableStringValue(c.Abstract),
			nullableStringValue(c.BibAuthors), nullableStringValue(c.BibYear),
			nullableStringValue(c.BibMonth), nullableStringValue(c.BibJournal),
			nullableStringValue(c.BibDOI), nullableStringValue(c.BibURL),
		)
		if err != nil {
			return fmt.Errorf("inserting citation %s/%s: %w", rec.ArXivID, c.Key, err)
		}
	}

	return tx.Commit()
}

// GetRecord retrieves one paper record with its citations. Returns nil, nil
// when no record exists for the identifier.
func (d *DB) GetRecord(arxivID string) (*paper.Record, error) {
	row := d.db.QueryRow(`SELECT `+selectPaperFields+` FROM papers WHERE arxiv_id = ?`, arxivID)
	rec, err := scanRecord(row)
	if err != nil || rec == nil {
		return rec, err
	}

	rows, err := d.db.Query(`
		SELECT `+selectCitationFields+`
		FROM citations
		WHERE parent_id = ?
		ORDER BY key`, arxivID)
	if err != nil {
		return nil, fmt.Errorf("listing citations for %s: %w", arxivID, err)
	}
	defer rows.Close()

	rec.Citations = []paper.Citation{}
	for rows.Next() {
		c, err := scanCitation(rows)
		if err != nil {
			return nil, err
		}
		rec.Citations = append(rec.Citations, *c)
	}
	return rec, rows.Err()
}

// Summary is a per-paper overview row for listing.
type Summary struct {
	ArXivID       string `json:"arxiv_id"`
	Title         string `json:"title"`
	SectionChars  int    `json:"section_chars"`
	Degraded      bool   `json:"degraded,omitempty"`
	CitationCount int    `json:"citation_count"`
	ResolvedCount int    `json:"resolved_count"`
}

// ListSummaries returns overview rows for all stored papers, ordered by
// identifier.
func (d *DB) ListSummaries() ([]Summary, error) {
	rows, err := d.db.Query(`
		SELECT p.arxiv_id, p.title, LENGTH(p.section), p.degraded,
			COUNT(c.key),
			COUNT(CASE WHEN c.title IS NOT NULL AND c.title != '' THEN 1 END)
		FROM papers p
		LEFT JOIN citations c ON c.parent_id = p.arxiv_id
		GROUP BY p.arxiv_id
		ORDER BY p.arxiv_id`)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	var summaries []Summary
	for rows.Next() {
		var s Summary
		var degraded int
		if err := rows.Scan(&s.ArXivID, &s.Title, &s.SectionChars, &degraded,
			&s.CitationCount, &s.ResolvedCount); err != nil {
			return nil, err
		}
		s.Degraded = degraded != 0
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// ListRecords returns all stored paper records with their citations.
func (d *DB) ListRecords() ([]paper.Record, error) {
	rows, err := d.db.Query(`SELECT ` + selectPaperFields + ` FROM papers ORDER BY arxiv_id`)
	if err != nil {
		return nil, fmt.Errorf("listing papers: %w", err)
	}
	defer rows.Close()

	var records []paper.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		full, err := d.GetRecord(records[i].ArXivID)
		if err != nil {
			return nil, err
		}
		records[i].Citations = full.Citations
	}
	return records, nil
}

// Count returns the number of stored papers.
func (d *DB) Count() (int, error) {
	var count int
	err := d.db.QueryRow("SELECT COUNT(*) FROM papers").Scan(&count)
	return count, err
}

// scanner interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(s scanner) (*paper.Record, error) {
	var rec paper.Record
	var absURL, abstract, published sql.NullString
	var degraded, sparse int

	err := s.Scan(&rec.ArXivID, &absURL, &rec.Title, &abstract, &published,
		&rec.Section, &degraded, &sparse)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	rec.AbsURL = absURL.String
	rec.Abstract = abstract.String
	rec.Degraded = degraded != 0
	rec.SparseCitations = sparse != 0

	if published.Valid && published.String != "" {
		t, err := time.Parse(time.RFC3339, published.String)
		if err != nil {
			return nil, fmt.Errorf("parsing published date for %s: %w", rec.ArXivID, err)
		}
		rec.Published = t
	}

	return &rec, nil
}

func scanCitation(s scanner) (*paper.Citation, error) {
	var c paper.Citation
	var parentTitle, rawText, title, identifier, abstract sql.NullString
	var bibAuthors, bibYear, bibMonth, bibJournal, bibDOI, bibURL sql.NullString

	err := s.Scan(&c.ParentID, &parentTitle, &c.Key, &rawText,
		&title, &identifier, &abstract,
		&bibAuthors, &bibYear, &bibMonth, &bibJournal, &bibDOI, &bibURL)
	if err != nil {
		return nil, err
	}

	c.ParentTitle = parentTitle.String
	c.RawText = rawText.String
	c.Title = title.String
	c.Identifier = identifier.String
	c.Abstract = abstract.String
	c.BibAuthors = bibAuthors.String
	c.BibYear = bibYear.String
	c.BibMonth = bibMonth.String
	c.BibJournal = bibJournal.String
	c.BibDOI = bibDOI.String
	c.BibURL = bibURL.String

	return &c, nil
}

// nullableStringValue converts a string to sql.NullString, treating empty as NULL.
func nullableStringValue(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolValue(b bool) int {
	if b {
		return 1
	}
	return 0
}

func publishedValue(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}
