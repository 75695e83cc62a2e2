// Package paper defines the core domain types for extracted papers and citations.
package paper

import "time"

// Meta is the identifying metadata for a paper supplied by a locator.
type Meta struct {
	// ArXivID is the bare identifier, e.g. "2502.07374".
	ArXivID string `json:"arxiv_id"`
	// AbsURL is the canonical abstract page URL.
	AbsURL    string    `json:"abs_url"`
	Title     string    `json:"title"`
	Authors   []string  `json:"authors,omitempty"`
	Abstract  string    `json:"abstract"`
	Published time.Time `json:"published"`
}

// Candidate is one result from an external paper search. Search offers no
// relevance guarantee; callers must judge candidates themselves.
type Candidate struct {
	Title      string `json:"title"`
	Abstract   string `json:"abstract"`
	Identifier string `json:"identifier"` // abstract page URL when known
}

// Citation is one literature citation mined from a related-work section.
// It is unique per (parent paper, Key). Resolution only fills empty fields,
// it never retracts a value that was already set.
type Citation struct {
	ParentID    string `json:"parent_arxiv_id"`
	ParentTitle string `json:"parent_title"`

	// Key is the citation shorthand: a \cite key, or the raw parenthetical
	// span for inline author-year citations.
	Key     string `json:"key"`
	RawText string `json:"raw_text"`

	// Resolution fields, populated during lookup.
	Title      string `json:"title,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Abstract   string `json:"abstract,omitempty"`

	// Bibliography-sourced fields.
	BibAuthors string `json:"bib_authors,omitempty"`
	BibYear    string `json:"bib_year,omitempty"`
	BibMonth   string `json:"bib_month,omitempty"`
	BibJournal string `json:"bib_journal,omitempty"`
	BibDOI     string `json:"bib_doi,omitempty"`
	BibURL     string `json:"bib_url,omitempty"`
}

// Resolved reports whether the citation was resolved to a concrete title.
func (c *Citation) Resolved() bool {
	return c.Title != ""
}

// Record is the final per-paper output: reconciled section text plus the
// citations mined from the markup path.
type Record struct {
	ArXivID   string    `json:"arxiv_id"`
	AbsURL    string    `json:"abs_url"`
	Title     string    `json:"title"`
	Abstract  string    `json:"abstract"`
	Published time.Time `json:"published"`

	// Section is the reconciled related-work prose. Sourced from the
	// rendered document when available, otherwise from normalized markup.
	Section string `json:"section"`

	// Degraded is true when the rendered-document path failed and Section
	// fell back to the normalized markup text.
	Degraded bool `json:"degraded,omitempty"`

	// SparseCitations is true when fewer citations were extracted than the
	// configured minimum.
	SparseCitations bool `json:"sparse_citations,omitempty"`

	Citations []Citation `json:"citations"`
}

// ResolvedCount returns how many citations carry a resolved title.
func (r *Record) ResolvedCount() int {
	n := 0
	for i := range r.Citations {
		if r.Citations[i].Resolved() {
			n++
		}
	}
	return n
}
