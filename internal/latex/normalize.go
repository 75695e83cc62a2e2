package latex

import (
	"regexp"
	"strings"
)

// Floating blocks are removed wholesale, content included: their captions
// and tabular noise would otherwise leak into the prose.
var floatBlockRes = []*regexp.Regexp{
	regexp.MustCompile(`(?s)\\begin\{figure\}.*?\\end\{figure\}`),
	regexp.MustCompile(`(?s)\\begin\{figure\*\}.*?\\end\{figure\*\}`),
	regexp.MustCompile(`(?s)\\begin\{subfigure\}.*?\\end\{subfigure\}`),
	regexp.MustCompile(`(?s)\\begin\{subfigure\*\}.*?\\end\{subfigure\*\}`),
}

var labelRe = regexp.MustCompile(`\\label\{[^}]*\}\n?`)

// Normalize cleans extracted markup: comments, floating figure blocks, and
// cross-reference labels are stripped, whitespace trimmed. Citation commands
// are deliberately preserved for the extractor. Normalize is idempotent.
func Normalize(content string) string {
	content = StripComments(content)
	for _, re := range floatBlockRes {
		content = re.ReplaceAllString(content, "")
	}
	content = labelRe.ReplaceAllString(content, "")
	return strings.TrimSpace(content)
}

// StripComments removes everything from the first unescaped % to the end of
// each line, preserving line structure. A % is escaped when preceded by an
// odd number of backslashes.
func StripComments(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if at := commentStart(line); at >= 0 {
			lines[i] = strings.TrimRight(line[:at], " \t")
		}
	}
	return strings.Join(lines, "\n")
}

// commentStart returns the index of the first unescaped % in a line,
// or -1 if the line has no comment.
func commentStart(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != '%' {
			continue
		}
		backslashes := 0
		for j := i - 1; j >= 0 && line[j] == '\\'; j-- {
			backslashes++
		}
		if backslashes%2 == 0 {
			return i
		}
	}
	return -1
}
