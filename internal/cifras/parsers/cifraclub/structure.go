package cifraclub

import (
	"regexp"
	"strings"
)

var sectionKindRules = []struct {
	kind    SectionKind
	pattern *regexp.Regexp
}{
	{SectionIntro, regexp.MustCompile(`(?i)intro`)},
	{SectionVerse, regexp.MustCompile(`(?i)(?:primeira|segunda|terceira)\s+parte|parte\s*\d+|verso|verse`)},
	{SectionChorus, regexp.MustCompile(`(?i)refr[ãa]o|chorus|coro`)},
	{SectionBridge, regexp.MustCompile(`(?i)ponte|bridge`)},
	{SectionOutro, regexp.MustCompile(`(?i)final|outro`)},
	{SectionSolo, regexp.MustCompile(`(?i)solo`)},
}

// classifySection maps a heading label to its section kind
func classifySection(label string) SectionKind {
	if isTabHeading(label) {
		return SectionTab
	}
	for _, rule := range sectionKindRules {
		if rule.pattern.MatchString(label) {
			return rule.kind
		}
	}
	return SectionOther
}

type sectionBuilder struct {
	sections []Section
	current  *Section
}

func (b *sectionBuilder) open(kind SectionKind, label string) {
	b.flush()
	b.current = &Section{Kind: kind, Label: label}
}

func (b *sectionBuilder) add(line string) {
	if b.current == nil {
		if strings.TrimSpace(line) == "" {
			return
		}
		b.current = &Section{Kind: SectionOther}
	}
	if len(b.current.Lines) == 0 && strings.TrimSpace(line) == "" {
		return
	}
	b.current.Lines = append(b.current.Lines, line)
}

func (b *sectionBuilder) flush() {
	if b.current == nil {
		return
	}
	lines := b.current.Lines
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) > 0 {
		b.current.Lines = lines
		b.sections = append(b.sections, *b.current)
	}
	b.current = nil
}

// ParseStructure splits extracted content into labeled sections. Tab sections
// and tab-shaped lines are dropped, as are sections left without lines.
func ParseStructure(content string) ParsedSheet {
	var builder sectionBuilder
	var filter tabFilter

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")

		switch filter.next(line) {
		case dropLine:
			if filter.inTab {
				builder.flush()
			}
		case keepHeading:
			label, _ := headingLabel(line)
			builder.open(classifySection(label), "["+label+"]")
			if rest := strings.TrimSpace(headingRegex.ReplaceAllString(line, "")); rest != "" {
				builder.add(rest)
			}
		default:
			builder.add(line)
		}
	}
	builder.flush()

	return ParsedSheet{
		Sections:   builder.sections,
		RawContent: content,
	}
}
