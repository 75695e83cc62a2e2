package latex

import (
	"testing"
)

func keysOf(text string) []string {
	cites := ExtractCitations(text, "1234.5678", "Parent Title")
	keys := make([]string, len(cites))
	for i := range cites {
		keys[i] = cites[i].Key
	}
	return keys
}

func TestExtractCitationsKeys(t *testing.T) {
	text := `Early work \cite{smith2020} was extended by \citep{jones2021}
and combined in \cite{smith2020,lee2022}.`

	keys := keysOf(text)
	want := []string{"smith2020", "jones2021", "lee2022"}
	if len(keys) != len(want) {
		t.Fatalf("got %d keys %v, want %v", len(keys), keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestExtractCitationsVariants(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"citet", `\citet{key1} showed this.`},
		{"bracket arg", `\cite[p.~7]{key1} showed this.`},
		{"starred", `\citep*{key1} showed this.`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := keysOf(tt.text)
			if len(keys) != 1 || keys[0] != "key1" {
				t.Errorf("got %v, want [key1]", keys)
			}
		})
	}
}

func TestExtractCitationsDedup(t *testing.T) {
	text := `\cite{a} then \cite{a} then \cite{A}.`
	keys := keysOf(text)
	// Keys are case-sensitive at extraction time; "a" and "A" are distinct.
	if len(keys) != 2 {
		t.Errorf("got %v, want [a A]", keys)
	}
}

func TestExtractCitationsIgnoresComments(t *testing.T) {
	text := `Real \cite{kept}.
% removed \cite{dropped}`
	keys := keysOf(text)
	if len(keys) != 1 || keys[0] != "kept" {
		t.Errorf("got %v, want [kept]", keys)
	}
}

func TestExtractCitationsFieldsSet(t *testing.T) {
	cites := ExtractCitations(`\cite{smith2020}`, "1234.5678", "Parent Title")
	if len(cites) != 1 {
		t.Fatalf("got %d citations", len(cites))
	}
	c := cites[0]
	if c.ParentID != "1234.5678" || c.ParentTitle != "Parent Title" {
		t.Errorf("parent fields not set: %+v", c)
	}
	if c.RawText != `\cite{smith2020}` {
		t.Errorf("raw text = %q", c.RawText)
	}
	if c.Resolved() {
		t.Error("fresh citation must not be resolved")
	}
}

func TestInlineFallbackOnlyWithoutCite(t *testing.T) {
	text := `As shown before (Smith et al., 2020), \cite{jones2021} extended it.`
	keys := keysOf(text)
	if len(keys) != 1 || keys[0] != "jones2021" {
		t.Errorf("inline fallback must not run when \\cite is present: %v", keys)
	}
}

func TestInlineFallback(t *testing.T) {
	text := `Prior work (Smith et al., 2020; Jones and Lee, 2021) studied this.
Pure numbers (2020) and bare years (see 2021) are ignored.`

	keys := keysOf(text)
	want := []string{"Smith et al., 2020", "Jones and Lee, 2021"}
	if len(keys) != len(want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}

func TestInlineFallbackRejectsNonCitations(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"no year", `(Smith et al.) argued this.`},
		{"year only", `The result (2020) holds.`},
		{"single word with year", `(since2020) is not a citation.`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if keys := keysOf(tt.text); len(keys) != 0 {
				t.Errorf("got %v, want none", keys)
			}
		})
	}
}
