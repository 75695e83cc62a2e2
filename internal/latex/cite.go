package latex

import (
	"regexp"
	"strings"

	"github.com/scholex/relworks/internal/paper"
)

var (
	// citeRe matches \cite and variants (\citep, \citet, \cite*), tolerating
	// an optional bracketed argument, with one or more comma-separated keys.
	citeRe = regexp.MustCompile(`\\cite[^{}]*\{([^}]+)\}`)

	// inlineCiteRe matches parenthetical spans containing a 4-digit year,
	// the fallback shape of author-year citations in plain prose.
	inlineCiteRe = regexp.MustCompile(`\(([^)]*\d{4}[^)]*)\)`)

	yearDigitsRe = regexp.MustCompile(`\d{4}`)
)

// ExtractCitations mines citations from a raw related-work section.
//
// Explicit \cite markup is the primary source; the parenthetical author-year
// fallback runs only when no \cite command is present at all, and is
// deliberately conservative. Citations are deduplicated per (paper, key),
// case-sensitively.
func ExtractCitations(text, parentID, parentTitle string) []paper.Citation {
	// Comments are stripped first so commented-out markup is not mined.
	cleaned := StripComments(text)

	seen := make(map[string]bool)
	var citations []paper.Citation

	add := func(key, raw string) {
		if seen[key] {
			return
		}
		seen[key] = true
		citations = append(citations, paper.Citation{
			ParentID:    parentID,
			ParentTitle: parentTitle,
			Key:         key,
			RawText:     raw,
		})
	}

	citeMatches := citeRe.FindAllStringSubmatch(cleaned, -1)
	for _, m := range citeMatches {
		for _, key := range strings.Split(m[1], ",") {
			key = strings.TrimSpace(key)
			if key == "" {
				continue
			}
			add(key, `\cite{`+key+`}`)
		}
	}

	if len(citeMatches) > 0 {
		return citations
	}

	for _, m := range inlineCiteRe.FindAllStringSubmatch(cleaned, -1) {
		span := m[1]
		if !inlineCandidate(span) {
			continue
		}
		for _, part := range strings.Split(span, ";") {
			part = strings.TrimSpace(part)
			if !inlineAccept(part) {
				continue
			}
			add(part, "("+part+")")
		}
	}

	return citations
}

// inlineCandidate filters whole parenthetical spans: a year plus either
// "et al" or an internal comma.
func inlineCandidate(span string) bool {
	if !yearDigitsRe.MatchString(span) {
		return false
	}
	lower := strings.ToLower(span)
	return strings.Contains(lower, "et al") || strings.Contains(span, ",")
}

// inlineAccept filters individual semicolon-separated sub-spans: each must
// still carry a year and either "et al" or at least two words.
func inlineAccept(part string) bool {
	if !yearDigitsRe.MatchString(part) {
		return false
	}
	if strings.Contains(strings.ToLower(part), "et al") {
		return true
	}
	return len(strings.Fields(part)) >= 2
}
