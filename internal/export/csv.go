// Package export writes extraction records to external formats.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/scholex/relworks/internal/paper"
)

// PaperHeader is the column order of the papers CSV.
var PaperHeader = []string{
	"arxiv_id", "abs_url", "title", "abstract", "published",
	"section", "degraded", "sparse_citations",
	"citation_count", "resolved_count",
}

// CitationHeader is the column order of the citations CSV.
var CitationHeader = []string{
	"parent_arxiv_id", "parent_title", "key", "raw_text",
	"title", "identifier", "abstract",
	"bib_authors", "bib_year", "bib_month", "bib_journal", "bib_doi", "bib_url",
}

// WritePapersCSV writes one row per record.
func WritePapersCSV(w io.Writer, records []paper.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(PaperHeader); err != nil {
		return err
	}

	for i := range records {
		r := &records[i]
		row := []string{
			r.ArXivID, r.AbsURL, r.Title, r.Abstract, formatPublished(r.Published),
			r.Section, formatBool(r.Degraded), formatBool(r.SparseCitations),
			strconv.Itoa(len(r.Citations)), strconv.Itoa(r.ResolvedCount()),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteCitationsCSV writes one row per citation across all records.
func WriteCitationsCSV(w io.Writer, records []paper.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CitationHeader); err != nil {
		return err
	}

	for i := range records {
		for j := range records[i].Citations {
			c := &records[i].Citations[j]
			row := []string{
				c.ParentID, c.ParentTitle, c.Key, c.RawText,
				c.Title, c.Identifier, c.Abstract,
				c.BibAuthors, c.BibYear, c.BibMonth, c.BibJournal, c.BibDOI, c.BibURL,
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatPublished(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
