// Package resolve resolves extracted citations to paper metadata.
//
// Resolution runs a strict priority order per citation: the bundled
// bibliography first (with external corroboration of its title), then a
// heuristic fallback that derives search terms from the citation key itself.
// The matching rules are conservative on purpose: an unresolved citation is
// always preferred over a wrong match.
package resolve

import (
	"context"
	"regexp"
	"strings"

	"github.com/scholex/relworks/internal/bibtex"
	"github.com/scholex/relworks/internal/paper"
)

const (
	// TitleMatchThreshold is the minimum token-overlap similarity for two
	// titles to be considered the same paper.
	TitleMatchThreshold = 0.6

	// corroborationLimit caps results per corroboration query.
	corroborationLimit = 3

	// fallbackLimit caps results per heuristic fallback query.
	fallbackLimit = 5

	// maxTitleQueryWords bounds the title words used in a search query.
	maxTitleQueryWords = 5

	// maxAuthorTerms bounds the author fragments used in fallback queries.
	maxAuthorTerms = 2
)

// Searcher is the narrow query interface resolution depends on, so matching
// logic is testable without live network access.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]paper.Candidate, error)
}

// Resolver resolves citations against a bibliography and an external search.
type Resolver struct {
	Searcher Searcher
}

// New creates a Resolver backed by the given searcher.
func New(s Searcher) *Resolver {
	return &Resolver{Searcher: s}
}

// Resolve fills in a citation's resolution fields in place. A nil return
// with an unresolved citation is a valid outcome, not an error; errors are
// scoped to this one citation and never abort a batch.
func (r *Resolver) Resolve(ctx context.Context, c *paper.Citation, bib bibtex.Bibliography) error {
	if entry, ok := bib.Lookup(c.Key); ok {
		return r.resolveFromBibliography(ctx, c, entry)
	}
	return r.resolveHeuristically(ctx, c)
}

// resolveFromBibliography copies bibliography fields onto the citation and
// corroborates the title via external search, upgrading identifier and
// abstract when a confident match is found. Without corroboration the
// bibliography title stands as final.
func (r *Resolver) resolveFromBibliography(ctx context.Context, c *paper.Citation, entry bibtex.Entry) error {
	c.Title = entry.Title
	c.BibAuthors = entry.Author
	c.BibYear = entry.Year
	c.BibMonth = entry.Month
	c.BibJournal = entry.Journal
	c.BibDOI = entry.DOI
	c.BibURL = entry.URL

	if entry.Title == "" {
		return nil
	}

	for _, query := range CorroborationQueries(entry.Title, entry.Author) {
		candidates, err := r.Searcher.Search(ctx, query, corroborationLimit)
		if err != nil || len(candidates) == 0 {
			continue
		}
		got := candidates[0]
		if TitlesMatch(entry.Title, got.Title) {
			c.Title = got.Title
			c.Identifier = got.Identifier
			c.Abstract = got.Abstract
			return nil
		}
	}
	return nil
}

// resolveHeuristically derives search terms from the citation key and tries
// an escalating series of queries, accepting the first candidate judged
// relevant.
func (r *Resolver) resolveHeuristically(ctx context.Context, c *paper.Citation) error {
	authors, year := SearchTerms(c.Key)
	if len(authors) == 0 {
		return nil
	}

	for _, query := range FallbackQueries(authors, year) {
		candidates, err := r.Searcher.Search(ctx, query, fallbackLimit)
		if err != nil {
			return err
		}
		for _, got := range candidates {
			if RelevantTitle(got.Title, authors, year) {
				c.Title = got.Title
				c.Identifier = got.Identifier
				c.Abstract = got.Abstract
				return nil
			}
		}
	}
	return nil
}

var (
	wordRe       = regexp.MustCompile(`\b\w{3,}\b`)
	yearRe       = regexp.MustCompile(`(?:19|20)\d{2}`)
	nonLetterRe  = regexp.MustCompile(`[^a-zA-Z]+`)
	authorWordRe = regexp.MustCompile(`\b[a-zA-Z]{2,}\b`)
)

// MeaningfulWords returns the lower-cased words of length >= 3 in a title,
// capped at maxTitleQueryWords.
func MeaningfulWords(title string) []string {
	words := wordRe.FindAllString(strings.ToLower(title), -1)
	if len(words) > maxTitleQueryWords {
		words = words[:maxTitleQueryWords]
	}
	return words
}

// CorroborationQueries builds the queries used to corroborate a bibliography
// title: title+author combinations first, the title-only query last.
func CorroborationQueries(title, authors string) []string {
	words := MeaningfulWords(title)
	if len(words) == 0 {
		return nil
	}
	terms := make([]string, len(words))
	for i, w := range words {
		terms[i] = "ti:" + w
	}
	titleQuery := strings.Join(terms, " AND ")

	var queries []string
	for _, author := range splitAuthors(authors) {
		last := lastNameOf(author)
		if len(last) > 2 {
			queries = append(queries, "("+titleQuery+") AND au:"+last)
		}
	}
	return append(queries, titleQuery)
}

// splitAuthors splits a BibTeX author field on " and ", keeping at most
// maxAuthorTerms names.
func splitAuthors(authors string) []string {
	if strings.TrimSpace(authors) == "" {
		return nil
	}
	parts := strings.Split(authors, " and ")
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
		if len(out) == maxAuthorTerms {
			break
		}
	}
	return out
}

// lastNameOf extracts the last token of a name, stripped of punctuation.
// Handles both "First Last" and "Last, First" by preferring the part before
// a comma when present.
func lastNameOf(name string) string {
	if i := strings.IndexByte(name, ','); i >= 0 {
		name = name[:i]
	}
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return strings.Trim(fields[len(fields)-1], ".,;")
}

// TitlesMatch reports whether two titles likely name the same paper, using
// token-overlap similarity over case-insensitive tokens of length >= 3.
func TitlesMatch(a, b string) bool {
	return TitleSimilarity(a, b) >= TitleMatchThreshold
}

// TitleSimilarity computes the Jaccard similarity of the two titles' token
// sets. Tokens shorter than 3 characters are ignored.
func TitleSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}

	overlap := 0
	for tok := range setA {
		if setB[tok] {
			overlap++
		}
	}
	union := len(setA) + len(setB) - overlap
	if union == 0 {
		return 0
	}
	return float64(overlap) / float64(union)
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range wordRe.FindAllString(strings.ToLower(s), -1) {
		set[tok] = true
	}
	return set
}

// SearchTerms derives author fragments and a year from a citation key such
// as "smith2020attention": the year token is stripped, the remaining letters
// tokenized, and at most two author-like fragments kept.
func SearchTerms(key string) (authors []string, year string) {
	year = yearRe.FindString(key)

	cleaned := yearRe.ReplaceAllString(key, " ")
	cleaned = nonLetterRe.ReplaceAllString(cleaned, " ")

	for _, w := range authorWordRe.FindAllString(cleaned, -1) {
		authors = append(authors, w)
		if len(authors) == maxAuthorTerms {
			break
		}
	}
	return authors, year
}

// FallbackQueries builds the escalating query sequence for key-derived
// terms: authors+year, first-author+year, authors without year, and finally
// a single author alone only when the name is distinctive (length > 4).
func FallbackQueries(authors []string, year string) []string {
	var queries []string
	appendQuery := func(q string) {
		for _, seen := range queries {
			if seen == q {
				return
			}
		}
		queries = append(queries, q)
	}

	authorQuery := func(terms []string) string {
		parts := make([]string, len(terms))
		for i, t := range terms {
			parts[i] = "au:" + t
		}
		return strings.Join(parts, " AND ")
	}

	if len(authors) > 0 && year != "" {
		dateRange := "submittedDate:[" + year + "0101 TO " + year + "1231]"
		appendQuery("(" + authorQuery(authors) + ") AND " + dateRange)
		appendQuery("au:" + authors[0] + " AND " + dateRange)
	}
	if len(authors) >= 2 {
		appendQuery(authorQuery(authors))
	}
	if len(authors) == 1 && len(authors[0]) > 4 {
		appendQuery("au:" + authors[0])
	}
	return queries
}

// RelevantTitle judges whether a search-result title plausibly matches the
// citation's derived terms: it must contain an author term as a substring or
// the year verbatim. Everything else is rejected, including short or generic
// titles; false negatives are acceptable, false positives are not.
func RelevantTitle(title string, authors []string, year string) bool {
	if title == "" {
		return false
	}

	lower := strings.ToLower(title)
	for _, a := range authors {
		if strings.Contains(lower, strings.ToLower(a)) {
			return true
		}
	}
	if year != "" && strings.Contains(title, year) {
		return true
	}

	return false
}
