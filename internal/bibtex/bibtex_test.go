package bibtex

import (
	"testing"

	"github.com/scholex/relworks/internal/archive"
)

const sampleBib = `
@article{smith2020,
  author = {Smith, Jane and Doe, John},
  title = {A Braced {Title} Example},
  journal = {Journal of Examples},
  year = {2020},
  doi = {10.1000/xyz},
}

@inproceedings{jones2021,
  author = "Jones, Alice",
  title = "A Quoted Title",
  year = "2021",
}

@misc{lee2022,
  title = {{Protected Capitalization Title}},
  url = {https://example.org/lee},
}
`

func TestParseFieldForms(t *testing.T) {
	bib := Parse(sampleBib)
	if len(bib) != 3 {
		t.Fatalf("got %d entries, want 3", len(bib))
	}

	smith, ok := bib.Lookup("smith2020")
	if !ok {
		t.Fatal("smith2020 not found")
	}
	if smith.Title != "A Braced {Title} Example" {
		t.Errorf("braced title = %q", smith.Title)
	}
	if smith.Author != "Smith, Jane and Doe, John" {
		t.Errorf("author = %q", smith.Author)
	}
	if smith.Year != "2020" || smith.DOI != "10.1000/xyz" {
		t.Errorf("year/doi = %q/%q", smith.Year, smith.DOI)
	}

	jones, _ := bib.Lookup("jones2021")
	if jones.Title != "A Quoted Title" {
		t.Errorf("quoted title = %q", jones.Title)
	}

	lee, _ := bib.Lookup("lee2022")
	if lee.Title != "Protected Capitalization Title" {
		t.Errorf("double-braced title = %q", lee.Title)
	}
	if lee.URL != "https://example.org/lee" {
		t.Errorf("url = %q", lee.URL)
	}
}

func TestLookupCaseInsensitive(t *testing.T) {
	bib := Parse(sampleBib)
	if _, ok := bib.Lookup("Smith2020"); !ok {
		t.Error("mixed-case lookup failed")
	}
	if _, ok := bib.Lookup("SMITH2020"); !ok {
		t.Error("upper-case lookup failed")
	}
	if _, ok := bib.Lookup("absent"); ok {
		t.Error("absent key found")
	}
}

func TestParseDuplicateKeysLastWins(t *testing.T) {
	content := `
@article{dup, title = {First}}
@article{dup, title = {Second}}
`
	bib := Parse(content)
	e, ok := bib.Lookup("dup")
	if !ok {
		t.Fatal("dup not found")
	}
	if e.Title != "Second" {
		t.Errorf("title = %q, want last entry to win", e.Title)
	}
}

func TestParseEmpty(t *testing.T) {
	if bib := Parse(""); bib != nil {
		t.Errorf("got %v, want nil", bib)
	}
	if bib := Parse("no entries here"); bib != nil {
		t.Errorf("got %v, want nil", bib)
	}
}

func TestFieldNormalizesValue(t *testing.T) {
	fields := `title = {A Title % with comment
continued},`
	if got := Field(fields, "title"); got != "A Title\ncontinued" {
		t.Errorf("got %q", got)
	}
}

func TestFromBundle(t *testing.T) {
	b := &archive.SourceBundle{ID: "1234.5678"}
	b.AddFile("main.tex", `\documentclass{article}`)
	b.AddFile("refs.bib", `@article{a, title = {From First}}`)
	b.AddFile("extra.bib", `@article{a, title = {From Second}}
@article{b, title = {Only Here}}`)

	bib := FromBundle(b)
	if bib == nil {
		t.Fatal("expected bibliography")
	}
	if len(bib) != 2 {
		t.Fatalf("got %d entries, want 2", len(bib))
	}

	// Files concatenate in inventory order, so the later file wins.
	a, _ := bib.Lookup("a")
	if a.Title != "From Second" {
		t.Errorf("title = %q, want later file to win", a.Title)
	}
}

func TestFromBundleWithoutBib(t *testing.T) {
	b := &archive.SourceBundle{ID: "1234.5678"}
	b.AddFile("main.tex", `\documentclass{article}`)
	if bib := FromBundle(b); bib != nil {
		t.Errorf("got %v, want nil", bib)
	}
}
