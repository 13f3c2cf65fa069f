package cifraclub

import (
	"regexp"
	"strings"
)

var (
	// headingRegex captures the label of a line that starts with a bracketed
	// heading. Chords may follow on the same line ("[Intro] G D Em").
	headingRegex = regexp.MustCompile(`^\s*\[([^\]]+)\]`)

	tabHeadingRegex = regexp.MustCompile(`(?i)\b(?:tab|tabs|tablatura|dedilhado|riff|riffs)\b`)

	// E|--3--|, e:---0---, A --2--
	stringTabRegex = regexp.MustCompile(`^\s*[EADGBeadgb]\s*(?:[|:]|-{2,})[-0-9|:hpbrx/\\~*()\s]*$`)

	tabRunRegex = regexp.MustCompile(`[|\-0-9 ]{10,}`)

	// tabRunMinMarks is how many non-space characters a run needs before it
	// counts as tablature. Runs of spaces between chords have none.
	tabRunMinMarks = 3

	paginationRegex = regexp.MustCompile(`(?i)^\s*parte\s+\d+\s+de\s+\d+\s*$`)
)

// headingLabel returns the bracketed label of a heading line
func headingLabel(line string) (string, bool) {
	m := headingRegex.FindStringSubmatch(line)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

func isTabHeading(label string) bool {
	return tabHeadingRegex.MatchString(label)
}

// isTabLine reports whether a single line looks like tablature or a
// pagination marker, regardless of the section it appears in.
func isTabLine(line string) bool {
	if strings.TrimSpace(line) == "" {
		return false
	}
	if stringTabRegex.MatchString(line) || paginationRegex.MatchString(line) {
		return true
	}
	for _, run := range tabRunRegex.FindAllString(line, -1) {
		if len(strings.ReplaceAll(run, " ", "")) >= tabRunMinMarks {
			return true
		}
	}
	return false
}

// tabFilter is the suppression state machine shared by content extraction and
// sectioning. A tab heading enters suppression; the next heading that is not a
// tab heading leaves it and is kept.
type tabFilter struct {
	inTab bool
}

type lineAction int

const (
	keepLine lineAction = iota
	dropLine
	keepHeading
)

func (f *tabFilter) next(line string) lineAction {
	if label, ok := headingLabel(line); ok {
		if isTabHeading(label) {
			f.inTab = true
			return dropLine
		}
		f.inTab = false
		return keepHeading
	}
	if f.inTab || isTabLine(line) {
		return dropLine
	}
	return keepLine
}
