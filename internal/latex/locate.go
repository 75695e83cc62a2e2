// Package latex locates and mines the related-work section of a LaTeX
// source bundle.
//
// Author layouts vary wildly, so location runs three ordered strategies and
// takes the first success: a direct heading match, following \input
// directives to likely files, and finally a whole-corpus scan. The design is
// recall-first: it tolerates the occasional wrong-file selection rather than
// missing heterogeneous layouts.
package latex

import (
	"regexp"
	"strings"

	"github.com/scholex/relworks/internal/archive"
)

// MinSectionChars is the content floor below which a candidate section is
// treated as not found.
const MinSectionChars = 100

// relatedFileKeywords marks include targets likely to hold related-work prose.
var relatedFileKeywords = []string{
	"relatedwork",
	"related_work",
	"related-work",
	"relwork",
	"background",
	"literature",
	"survey",
	"prior",
	"previous",
	"review",
}

var (
	sectionCmdRe     = regexp.MustCompile(`\\section`)
	sectionHeadingRe = regexp.MustCompile(`\\section\*?\{([^}]+)\}`)
	inputRe          = regexp.MustCompile(`\\(?:input|include)\{([^}]+)\}`)
	documentClassRe  = regexp.MustCompile(`\\documentclass`)
)

// Locate finds the related-work section text in a bundle, trying the three
// strategies in order. The returned text is raw markup; it still needs
// Normalize before being shown as prose.
func Locate(bundle *archive.SourceBundle, names []string) (string, bool) {
	if text, ok := directHeading(bundle, names); ok {
		return text, ok
	}
	if text, ok := followIncludes(bundle, names); ok {
		return text, ok
	}
	return corpusScan(bundle, names)
}

// headingRe builds a pattern matching \section{NAME} for any accepted name,
// case-insensitive and tolerant of whitespace variations inside the name.
func headingRe(names []string) *regexp.Regexp {
	patterns := make([]string, len(names))
	for i, name := range names {
		patterns[i] = strings.ReplaceAll(regexp.QuoteMeta(name), `\ `, `\s+`)
	}
	return regexp.MustCompile(`(?i)\\section\*?\{\s*(?:` + strings.Join(patterns, "|") + `)\s*\}`)
}

// sectionInterior returns the text between a heading match and the next
// \section command (or end of document), trimmed.
func sectionInterior(content string, headingEnd int) string {
	rest := content[headingEnd:]
	if loc := sectionCmdRe.FindStringIndex(rest); loc != nil {
		rest = rest[:loc[0]]
	}
	return strings.TrimSpace(rest)
}

// directHeading scans candidate documents for an accepted heading and picks
// the largest heading-to-next-heading span, tie-broken by document length.
func directHeading(bundle *archive.SourceBundle, names []string) (string, bool) {
	re := headingRe(names)

	var best string
	bestDoc := -1
	for _, content := range candidateDocs(bundle) {
		loc := re.FindStringIndex(content)
		if loc == nil {
			continue
		}
		interior := sectionInterior(content, loc[1])
		if len(interior) > len(best) || (len(interior) == len(best) && len(content) > bestDoc) {
			best = interior
			bestDoc = len(content)
		}
	}

	if len(best) < MinSectionChars {
		return "", false
	}
	return best, true
}

// candidateDocs returns the documents to consider for heading matches:
// every inventoried .tex file, or the raw payload in degraded mode.
func candidateDocs(bundle *archive.SourceBundle) []string {
	if !bundle.HasInventory() {
		if bundle.Raw == "" {
			return nil
		}
		return []string{bundle.Raw}
	}
	var docs []string
	for _, name := range bundle.Names(".tex") {
		docs = append(docs, bundle.Files[name])
	}
	return docs
}

// RootDocument returns the most plausible entry-point document: the longest
// file with an accepted heading, else the longest file with \documentclass,
// else the raw payload.
func RootDocument(bundle *archive.SourceBundle, names []string) string {
	if !bundle.HasInventory() {
		return bundle.Raw
	}

	re := headingRe(names)
	var withHeading, withClass string
	for _, name := range bundle.Names(".tex") {
		content := bundle.Files[name]
		if re.MatchString(content) && len(content) > len(withHeading) {
			withHeading = content
		}
		if documentClassRe.MatchString(content) && len(content) > len(withClass) {
			withClass = content
		}
	}
	if withHeading != "" {
		return withHeading
	}
	return withClass
}

// followIncludes scans the root document's composition directives and probes
// referenced files whose names look related-work-like. The first file whose
// content exceeds the floor wins, whole-file.
func followIncludes(bundle *archive.SourceBundle, names []string) (string, bool) {
	if !bundle.HasInventory() {
		return "", false
	}
	root := RootDocument(bundle, names)
	if root == "" {
		return "", false
	}

	for _, m := range inputRe.FindAllStringSubmatch(root, -1) {
		target := strings.TrimSpace(m[1])
		if !LikelyRelatedFile(target) {
			continue
		}
		for _, variant := range filenameVariants(target) {
			content, ok := bundle.Files[variant]
			if !ok {
				continue
			}
			if text := strings.TrimSpace(content); len(text) >= MinSectionChars {
				return text, true
			}
		}
	}
	return "", false
}

// filenameVariants lists the inventory names an \input target may resolve to.
// The inventory is keyed by basename, so path prefixes are stripped too.
func filenameVariants(target string) []string {
	base := target
	if i := strings.LastIndex(target, "/"); i >= 0 {
		base = target[i+1:]
	}
	return []string{target + ".tex", target, base + ".tex", base}
}

// LikelyRelatedFile reports whether a filename suggests related-work content.
func LikelyRelatedFile(filename string) bool {
	base := filename
	if i := strings.LastIndex(base, "/"); i >= 0 {
		base = base[i+1:]
	}
	base = strings.ToLower(strings.TrimSuffix(base, ".tex"))

	for _, keyword := range relatedFileKeywords {
		if strings.Contains(base, keyword) {
			return true
		}
	}
	return false
}

// corpusScan searches every non-root file for an accepted heading, then
// falls back to scoring whole files by length and filename relevance.
func corpusScan(bundle *archive.SourceBundle, names []string) (string, bool) {
	if !bundle.HasInventory() {
		return "", false
	}

	var bestContent string
	bestScore := 0

	for _, name := range bundle.Names(".tex") {
		content := bundle.Files[name]
		// The entry-point document was covered by the direct strategy.
		if documentClassRe.MatchString(content) {
			continue
		}

		for _, m := range sectionHeadingRe.FindAllStringSubmatchIndex(content, -1) {
			title := content[m[2]:m[3]]
			if !titleMatchesAny(title, names) {
				continue
			}
			interior := sectionInterior(content, m[1])
			if len(interior) >= MinSectionChars {
				return interior, true
			}
		}

		if score := ScoreFile(name, content); score > bestScore {
			bestScore = score
			bestContent = strings.TrimSpace(content)
		}
	}

	if bestContent == "" {
		return "", false
	}
	return bestContent, true
}

// titleMatchesAny reports whether a heading title contains any accepted
// section name, case-insensitively.
func titleMatchesAny(title string, names []string) bool {
	lower := strings.ToLower(title)
	for _, name := range names {
		if strings.Contains(lower, strings.ToLower(name)) {
			return true
		}
	}
	return false
}

// ScoreFile scores a headerless file as a whole-file candidate: content
// length, doubled when the filename itself mentions "related". Files below
// the floor or without a related-looking name score zero.
func ScoreFile(name, content string) int {
	if !LikelyRelatedFile(name) {
		return 0
	}
	trimmed := strings.TrimSpace(content)
	if len(trimmed) < MinSectionChars {
		return 0
	}
	score := len(trimmed)
	if strings.Contains(strings.ToLower(name), "related") {
		score *= 2
	}
	return score
}
