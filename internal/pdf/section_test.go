package pdf

import (
	"strings"
	"testing"
)

var names = []string{"Related Work", "Related Works"}

const (
	proseLine1 = "Several lines of prior work have studied this problem from complementary angles over the past decade."
	proseLine2 = "Feature-based systems dominated early benchmarks before neural models displaced them almost entirely."
	proseLine3 = "More recent work focuses on scaling behavior and on transfer across domains and modalities."
)

func TestSectionNumberedBoundaries(t *testing.T) {
	text := strings.Join([]string{
		"1. Introduction",
		"Intro prose.",
		"2. Related Work",
		proseLine1,
		proseLine2,
		proseLine3,
		"3. Methodology",
		"Method prose.",
	}, "\n")

	section, ok := Section(text, names)
	if !ok {
		t.Fatal("expected section to be found")
	}
	want := proseLine1 + "\n" + proseLine2 + "\n" + proseLine3
	if section != want {
		t.Errorf("section = %q, want %q", section, want)
	}
}

func TestSectionEndMarker(t *testing.T) {
	text := strings.Join([]string{
		"Related Work",
		proseLine1,
		proseLine2,
		"Conclusion",
		"Concluding prose.",
	}, "\n")

	section, ok := Section(text, names)
	if !ok {
		t.Fatal("expected section to be found")
	}
	if strings.Contains(section, "Concluding") {
		t.Errorf("section ran past end marker: %q", section)
	}
}

func TestSectionHeaderGluedInLine(t *testing.T) {
	text := strings.Join([]string{
		"2. Related Work",
		proseLine1,
		proseLine2,
		"closing remark.3. Methodology We describe our approach",
	}, "\n")

	section, ok := Section(text, names)
	if !ok {
		t.Fatal("expected section to be found")
	}
	if !strings.Contains(section, "closing remark") {
		t.Errorf("content before glued heading lost: %q", section)
	}
	if strings.Contains(section, "Methodology") {
		t.Errorf("glued heading leaked into section: %q", section)
	}
}

func TestSectionSubsectionsStayInside(t *testing.T) {
	text := strings.Join([]string{
		"2. Related Work",
		proseLine1,
		"2.1 Classical Approaches",
		proseLine2,
		"3. Methodology",
	}, "\n")

	section, ok := Section(text, names)
	if !ok {
		t.Fatal("expected section to be found")
	}
	if !strings.Contains(section, "Classical Approaches") {
		t.Errorf("subsection heading ended the section early: %q", section)
	}
	if !strings.Contains(section, proseLine2) {
		t.Errorf("prose after subsection lost: %q", section)
	}
}

func TestSectionStartSkipsProseMentions(t *testing.T) {
	text := strings.Join([]string{
		"We defer to the related work. Section two covers it in depth today.",
		"2. Related Work",
		proseLine1,
		proseLine2,
		"3. Methodology",
	}, "\n")

	section, ok := Section(text, names)
	if !ok {
		t.Fatal("expected section to be found")
	}
	if strings.Contains(section, "defer") {
		t.Errorf("prose mention treated as heading: %q", section)
	}
}

func TestSectionBelowFloor(t *testing.T) {
	text := strings.Join([]string{
		"2. Related Work",
		"Too short.",
		"3. Methodology",
	}, "\n")

	if _, ok := Section(text, names); ok {
		t.Error("expected sub-floor section to be rejected")
	}
}

func TestSectionNotFound(t *testing.T) {
	text := "1. Introduction\nNothing else here.\n2. Methodology"
	if _, ok := Section(text, names); ok {
		t.Error("expected no section")
	}
}

func TestSectionCollapsesWhitespace(t *testing.T) {
	text := strings.Join([]string{
		"Related Work",
		proseLine1 + "   with \t padded   spacing",
		proseLine2,
	}, "\n")

	section, ok := Section(text, names)
	if !ok {
		t.Fatal("expected section to be found")
	}
	if strings.Contains(section, "  ") || strings.Contains(section, "\t") {
		t.Errorf("inline whitespace not collapsed: %q", section)
	}
}

func TestStartsNextSection(t *testing.T) {
	lines := []string{
		"Related Work",
		proseLine1 + " It ends with a period.",
		"Methodology",
	}
	if !startsNextSection("Methodology", lines, 2, 0) {
		t.Error("expected short capitalized keyword line after terminal line to end the section")
	}

	lines[1] = proseLine1 + " it continues without terminal punctuation and is quite long indeed"
	if startsNextSection("Methodology", lines, 2, 0) {
		t.Error("expected non-terminal previous line to keep the section open")
	}
}
