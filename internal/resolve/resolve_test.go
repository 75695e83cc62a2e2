package resolve

import (
	"context"
	"errors"
	"testing"

	"github.com/scholex/relworks/internal/bibtex"
	"github.com/scholex/relworks/internal/paper"
)

// fakeSearcher returns canned candidates per query and records the queries
// it received.
type fakeSearcher struct {
	results map[string][]paper.Candidate
	err     error
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]paper.Candidate, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

func TestTitleSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"identical", "Attention Is All You Need", "Attention Is All You Need", 1.0},
		{"disjoint", "Graph Neural Networks", "Protein Folding Dynamics", 0.0},
		{"empty", "", "Anything", 0.0},
		{"short tokens ignored", "A of in", "A of in", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleSimilarity(tt.a, tt.b); got != tt.want {
				t.Errorf("TitleSimilarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestTitlesMatchBoundary(t *testing.T) {
	// Overlap 3 with union 6 falls below the threshold; overlap 3 with
	// union 4 clears it.
	if TitlesMatch("alpha beta gamma delta", "alpha beta gamma epsilon zeta") {
		t.Error("similarity below threshold accepted")
	}
	if !TitlesMatch("alpha beta gamma", "alpha beta gamma delta") {
		t.Error("similarity at threshold rejected")
	}
}

func TestSearchTerms(t *testing.T) {
	tests := []struct {
		key         string
		wantAuthors []string
		wantYear    string
	}{
		{"smith2020attention", []string{"smith", "attention"}, "2020"},
		{"vaswani2017", []string{"vaswani"}, "2017"},
		{"deep-learning-survey", []string{"deep", "learning"}, ""},
		{"a1", nil, ""},
		{"2020", nil, "2020"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			authors, year := SearchTerms(tt.key)
			if year != tt.wantYear {
				t.Errorf("year = %q, want %q", year, tt.wantYear)
			}
			if len(authors) != len(tt.wantAuthors) {
				t.Fatalf("authors = %v, want %v", authors, tt.wantAuthors)
			}
			for i := range authors {
				if authors[i] != tt.wantAuthors[i] {
					t.Errorf("authors[%d] = %q, want %q", i, authors[i], tt.wantAuthors[i])
				}
			}
		})
	}
}

func TestFallbackQueries(t *testing.T) {
	queries := FallbackQueries([]string{"smith", "jones"}, "2020")
	want := []string{
		"(au:smith AND au:jones) AND submittedDate:[20200101 TO 20201231]",
		"au:smith AND submittedDate:[20200101 TO 20201231]",
		"au:smith AND au:jones",
	}
	if len(queries) != len(want) {
		t.Fatalf("got %v, want %v", queries, want)
	}
	for i := range want {
		if queries[i] != want[i] {
			t.Errorf("queries[%d] = %q, want %q", i, queries[i], want[i])
		}
	}
}

func TestFallbackQueriesSingleAuthor(t *testing.T) {
	// A lone distinctive author gets a bare query; a short one does not.
	queries := FallbackQueries([]string{"vaswani"}, "")
	if len(queries) != 1 || queries[0] != "au:vaswani" {
		t.Errorf("got %v", queries)
	}
	if queries := FallbackQueries([]string{"lee"}, ""); len(queries) != 0 {
		t.Errorf("short lone author should produce no queries, got %v", queries)
	}
}

func TestCorroborationQueries(t *testing.T) {
	queries := CorroborationQueries("Attention Is All You Need", "Vaswani, Ashish and Shazeer, Noam")
	want := []string{
		"(ti:attention AND ti:all AND ti:you AND ti:need) AND au:Vaswani",
		"(ti:attention AND ti:all AND ti:you AND ti:need) AND au:Shazeer",
		"ti:attention AND ti:all AND ti:you AND ti:need",
	}
	if len(queries) != len(want) {
		t.Fatalf("got %v, want %v", queries, want)
	}
	for i := range want {
		if queries[i] != want[i] {
			t.Errorf("queries[%d] = %q, want %q", i, queries[i], want[i])
		}
	}
}

func TestRelevantTitle(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		authors []string
		year    string
		want    bool
	}{
		{"author substring", "The Smithsonian Approach", []string{"smith"}, "", true},
		{"year verbatim", "Benchmarks 2020 Revisited", nil, "2020", true},
		{"neither", "Unrelated Paper", []string{"smith"}, "2020", false},
		{"empty title", "", []string{"smith"}, "2020", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelevantTitle(tt.title, tt.authors, tt.year); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveFromBibliographyCorroborated(t *testing.T) {
	bib := bibtex.Bibliography{
		"smith2020": {
			Key:    "smith2020",
			Title:  "Graph Learning at Scale",
			Author: "Smith, Jane",
			Year:   "2020",
		},
	}

	s := &fakeSearcher{results: map[string][]paper.Candidate{
		"(ti:graph AND ti:learning AND ti:scale) AND au:Smith": {{
			Title:      "Graph Learning at Scale",
			Identifier: "https://arxiv.org/abs/2001.00001",
			Abstract:   "We study graph learning.",
		}},
	}}

	c := paper.Citation{Key: "smith2020"}
	if err := New(s).Resolve(context.Background(), &c, bib); err != nil {
		t.Fatal(err)
	}
	if c.Identifier != "https://arxiv.org/abs/2001.00001" {
		t.Errorf("identifier = %q", c.Identifier)
	}
	if c.Abstract != "We study graph learning." {
		t.Errorf("abstract = %q", c.Abstract)
	}
	if c.BibAuthors != "Smith, Jane" || c.BibYear != "2020" {
		t.Errorf("bibliography fields not copied: %+v", c)
	}
}

func TestResolveFromBibliographyUncorroborated(t *testing.T) {
	bib := bibtex.Bibliography{
		"smith2020": {Key: "smith2020", Title: "Graph Learning at Scale"},
	}

	// Search returns an unrelated first candidate for every query.
	s := &fakeSearcher{results: map[string][]paper.Candidate{}}

	c := paper.Citation{Key: "smith2020"}
	if err := New(s).Resolve(context.Background(), &c, bib); err != nil {
		t.Fatal(err)
	}
	// The bibliography title stands; no identifier is invented.
	if c.Title != "Graph Learning at Scale" {
		t.Errorf("title = %q", c.Title)
	}
	if c.Identifier != "" {
		t.Errorf("identifier = %q, want empty", c.Identifier)
	}
}

func TestResolveCorroborationIgnoresSearchErrors(t *testing.T) {
	bib := bibtex.Bibliography{
		"smith2020": {Key: "smith2020", Title: "Graph Learning at Scale"},
	}
	s := &fakeSearcher{err: errors.New("boom")}

	c := paper.Citation{Key: "smith2020"}
	if err := New(s).Resolve(context.Background(), &c, bib); err != nil {
		t.Errorf("corroboration errors must not surface: %v", err)
	}
	if c.Title != "Graph Learning at Scale" {
		t.Errorf("title = %q", c.Title)
	}
}

func TestResolveHeuristically(t *testing.T) {
	s := &fakeSearcher{results: map[string][]paper.Candidate{
		"au:smith AND submittedDate:[20200101 TO 20201231]": {
			{Title: "Totally Unrelated"},
			{Title: "The Smith Conjecture, Extended"},
		},
	}}

	c := paper.Citation{Key: "smith2020"}
	if err := New(s).Resolve(context.Background(), &c, nil); err != nil {
		t.Fatal(err)
	}
	if c.Title != "The Smith Conjecture, Extended" {
		t.Errorf("title = %q", c.Title)
	}

	// The first query matched nothing, the second succeeded.
	if len(s.queries) < 2 {
		t.Fatalf("expected escalation, got queries %v", s.queries)
	}
}

func TestResolveHeuristicErrorSurfaces(t *testing.T) {
	s := &fakeSearcher{err: errors.New("boom")}
	c := paper.Citation{Key: "smith2020"}
	if err := New(s).Resolve(context.Background(), &c, nil); err == nil {
		t.Error("expected search error to surface for heuristic resolution")
	}
	if c.Resolved() {
		t.Error("citation must stay unresolved on error")
	}
}

func TestResolveNoTermsNoQueries(t *testing.T) {
	s := &fakeSearcher{}
	c := paper.Citation{Key: "??"}
	if err := New(s).Resolve(context.Background(), &c, nil); err != nil {
		t.Fatal(err)
	}
	if len(s.queries) != 0 {
		t.Errorf("expected no queries for unusable key, got %v", s.queries)
	}
}
