package pdf

import (
	"regexp"
	"strings"
)

// MinSectionChars is the content floor below which a candidate section is
// treated as not found.
const MinSectionChars = 100

var (
	// proseShapedRe detects sentence-like lines ("... word. Capital ..."),
	// which disqualifies a line as a section heading even when short.
	proseShapedRe = regexp.MustCompile(`(?:\d*[a-zA-Z]+\d*)+\.\s+[a-zA-Z]`)

	// headerInLineRe finds a numbered section heading embedded anywhere in a
	// line, e.g. "…previous approaches.3. Methodology We now…". Extracted
	// text often glues the next heading onto the last sentence like this.
	headerInLineRe = regexp.MustCompile(`\.?\s*(\d+\.?\s+[A-Z](?:[a-z]|[A-Z]|\s+[A-Z])[^.]*?)(?:\s|$)`)

	// subsectionInLineRe recognizes x.y numbered subsection headings, which
	// stay in-section rather than ending it.
	subsectionInLineRe = regexp.MustCompile(`\.?\s*(\d+\.\d+\s+[A-Z](?:[a-z]|[A-Z])[^.]*?)(?:\s|$)`)

	// numberedStartRe matches a bare numbered heading at line start.
	numberedStartRe   = regexp.MustCompile(`^\d+\.?\s+[A-Z][a-z]`)
	subsectionStartRe = regexp.MustCompile(`^\d+\.\d`)

	blankRunRe = regexp.MustCompile(`\n\s*\n`)
	inlineWSRe = regexp.MustCompile(`[ \t]+`)
)

// endMarkers are lines that, matched exactly (case-insensitive), always end
// the section.
var endMarkers = map[string]bool{
	"methodology":          true,
	"method":               true,
	"methods":              true,
	"approach":             true,
	"approaches":           true,
	"experiment":           true,
	"experiments":          true,
	"evaluation":           true,
	"result":               true,
	"results":              true,
	"discussion":           true,
	"conclusion":           true,
	"conclusions":          true,
	"implementation":       true,
	"future work":          true,
	"acknowledgment":       true,
	"acknowledgments":      true,
	"reference":            true,
	"references":           true,
	"bibliography":         true,
	"appendix":             true,
	"limitation":           true,
	"limitations":          true,
	"author contribution":  true,
	"author contributions": true,
}

// sectionStartWords begin likely next-section headings when the line is
// short, capitalized, and the preceding line looks terminal.
var sectionStartWords = []string{
	"method",
	"approach",
	"experiment",
	"evaluation",
	"result",
	"discussion",
	"conclusion",
	"implementation",
}

// Section locates the related-work section in extracted document text.
// Rendered text carries no structural markers, so both boundaries are
// inferred from line shape. End detection deliberately favors including a
// little next-section text over truncating the section early.
func Section(text string, names []string) (string, bool) {
	lines := strings.Split(text, "\n")

	start := startLine(lines, names)
	if start < 0 {
		return "", false
	}

	var content []string
	for i := start + 1; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		// A heading glued inside the line ends the section; the content
		// before it still belongs to us.
		if m := headerInLineRe.FindStringSubmatchIndex(line); m != nil && !subsectionInLineRe.MatchString(line) {
			before := strings.TrimSpace(line[:m[2]])
			before = strings.TrimSuffix(before, ".")
			if before = strings.TrimSpace(before); before != "" {
				content = append(content, before)
			}
			break
		}

		// Long lines are body text regardless of what they contain.
		if len(line) > 80 {
			content = append(content, line)
			continue
		}

		if numberedStartRe.MatchString(line) && !subsectionStartRe.MatchString(line) {
			break
		}

		if endMarkers[strings.ToLower(line)] {
			break
		}

		if startsNextSection(line, lines, i, start) {
			break
		}

		content = append(content, line)
	}

	section := strings.TrimSpace(strings.Join(content, "\n"))
	if len(section) < MinSectionChars {
		return "", false
	}

	section = blankRunRe.ReplaceAllString(section, "\n\n")
	section = inlineWSRe.ReplaceAllString(section, " ")
	return strings.TrimSpace(section), true
}

// startLine finds the first line that looks like the section heading: short,
// containing an accepted name, and not prose-shaped.
func startLine(lines []string, names []string) int {
	lowered := make([]string, len(names))
	for i, n := range names {
		lowered[i] = strings.ToLower(n)
	}

	for i, line := range lines {
		clean := strings.ToLower(strings.TrimSpace(line))
		if len(clean) >= 100 {
			continue
		}
		for _, name := range lowered {
			if !strings.Contains(clean, name) {
				continue
			}
			if proseShapedRe.MatchString(clean) {
				continue
			}
			return i
		}
	}
	return -1
}

// startsNextSection applies the weakest end cue: a short capitalized line
// beginning with a section keyword, preceded by a line that looks terminal
// (ends a sentence or parenthesis, or is itself short).
func startsNextSection(line string, lines []string, i, start int) bool {
	lower := strings.ToLower(line)

	matched := false
	for _, w := range sectionStartWords {
		if strings.HasPrefix(lower, w) {
			matched = true
			break
		}
	}
	if !matched || len(strings.Fields(line)) > 4 {
		return false
	}
	if line[0] < 'A' || line[0] > 'Z' {
		return false
	}

	prev := i - 1
	for prev > start && strings.TrimSpace(lines[prev]) == "" {
		prev--
	}
	if prev <= start {
		return false
	}

	p := strings.TrimSpace(lines[prev])
	return strings.HasSuffix(p, ".") || strings.HasSuffix(p, ")") || len(p) < 20
}
