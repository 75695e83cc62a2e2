// Package bibtex parses bibliography source files into keyed entries.
//
// Parsing is deliberately loose: real-world .bib files are full of
// vendor-specific fields, stray braces, and duplicated keys, so the grammar
// is marker-delimited (entry start to next entry start) rather than strict.
package bibtex

import (
	"regexp"
	"strings"

	"github.com/scholex/relworks/internal/archive"
	"github.com/scholex/relworks/internal/latex"
)

// Entry is one bibliography entry. All fields are optional.
type Entry struct {
	Key     string
	Author  string
	Title   string
	Journal string
	Year    string
	Month   string
	DOI     string
	URL     string
}

// Bibliography maps lower-cased citation keys to entries. Citation keys are
// matched case-insensitively because LaTeX treats them that way in practice.
type Bibliography map[string]Entry

// Lookup finds an entry by citation key, case-insensitively.
func (b Bibliography) Lookup(key string) (Entry, bool) {
	e, ok := b[strings.ToLower(key)]
	return e, ok
}

// entryStartRe matches the start of a BibTeX entry: @type{key,
var entryStartRe = regexp.MustCompile(`@\w+\s*\{\s*([^,\s{}]+)\s*,`)

// FromBundle selects the bibliography files of a source bundle and parses
// them. Multiple .bib files are concatenated in inventory order; duplicate
// keys resolve last-write-wins. Returns nil when the bundle has none.
func FromBundle(bundle *archive.SourceBundle) Bibliography {
	names := bundle.Names(".bib")
	if len(names) == 0 {
		return nil
	}

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(bundle.Files[name])
		sb.WriteString("\n")
	}
	return Parse(sb.String())
}

// Parse parses concatenated BibTeX content into a Bibliography.
func Parse(content string) Bibliography {
	starts := entryStartRe.FindAllStringSubmatchIndex(content, -1)
	if len(starts) == 0 {
		return nil
	}

	bib := make(Bibliography, len(starts))
	for i, m := range starts {
		key := strings.ToLower(strings.TrimSpace(content[m[2]:m[3]]))
		end := len(content)
		if i+1 < len(starts) {
			end = starts[i+1][0]
		}
		fields := content[m[1]:end]

		bib[key] = Entry{
			Key:     key,
			Author:  Field(fields, "author"),
			Title:   Field(fields, "title"),
			Journal: Field(fields, "journal"),
			Year:    Field(fields, "year"),
			Month:   Field(fields, "month"),
			DOI:     Field(fields, "doi"),
			URL:     Field(fields, "url"),
		}
	}
	return bib
}

// Field extracts a named field value from an entry's field block. Values in
// single-nested-brace, double-brace, and double-quote form are tried in that
// order; the value is normalized before being returned.
func Field(fields, name string) string {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(name) + `\s*=\s*`)
	for _, loc := range re.FindAllStringIndex(fields, -1) {
		rest := fields[loc[1]:]
		if rest == "" {
			continue
		}

		var value string
		switch rest[0] {
		case '{':
			inner, ok := bracedValue(rest)
			if !ok {
				continue
			}
			// A doubly-braced value {{...}} protects capitalization;
			// strip the extra layer.
			if len(inner) >= 2 && inner[0] == '{' && inner[len(inner)-1] == '}' {
				inner = inner[1 : len(inner)-1]
			}
			value = inner
		case '"':
			end := strings.IndexByte(rest[1:], '"')
			if end < 0 {
				continue
			}
			value = rest[1 : 1+end]
		default:
			continue
		}

		value = latex.Normalize(value)
		value = strings.Trim(value, `"`)
		if value != "" {
			return value
		}
	}
	return ""
}

// bracedValue returns the content of a balanced brace group starting at
// rest[0] == '{'.
func bracedValue(rest string) (string, bool) {
	depth := 0
	for i := 0; i < len(rest); i++ {
		switch rest[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return rest[1:i], true
			}
		}
	}
	return "", false
}
