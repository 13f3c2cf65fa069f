package music

import (
	"regexp"
	"strings"
)

// chordRegex matches a chord symbol followed by a character that cannot
// continue a word. Go's regexp has no lookahead, so the terminator is part of
// the match and only the first group is replaced.
//
// Any capitalized word made of a note letter and quality keywords ("Em", "A")
// is matched too; lyrics in those languages are transposed along with the
// chords.
var chordRegex = regexp.MustCompile(`\b([A-G](?:##|#|bb|b)?(?:maj|min|dim|aug|sus|add|m|M|\d)*(?:\([^)\s]*\))?(?:/[A-G](?:##|#|bb|b)?)?)([^\w#]|$)`)

var chordTokenRegex = regexp.MustCompile(`^([A-G](?:##|#|bb|b)?)(.*)$`)

// afterAbbreviation reports whether the match at start follows a letter and a
// dot, as the C of the no-chord marker "N.C." does.
func afterAbbreviation(line string, start int) bool {
	if start < 2 || line[start-1] != '.' {
		return false
	}
	c := line[start-2]
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}

// chordSpans returns the [start, end) offsets of the chord symbols in line
func chordSpans(line string) [][2]int {
	var spans [][2]int
	for _, loc := range chordRegex.FindAllStringSubmatchIndex(line, -1) {
		if afterAbbreviation(line, loc[2]) {
			continue
		}
		spans = append(spans, [2]int{loc[2], loc[3]})
	}
	return spans
}

func transposeNote(token string, semitones int) string {
	m := chordTokenRegex.FindStringSubmatch(token)
	if m == nil {
		return token
	}
	idx, ok := IndexOf(m[1])
	if !ok {
		return token
	}
	return AvailableKeys[mod12(idx+mod12(semitones))] + m[2]
}

// TransposeChordToken shifts the root of a chord symbol by semitones and keeps
// the suffix verbatim. In a slash chord the bass note is shifted on its own:
// TransposeChordToken("C/G", 2) == "D/A".
func TransposeChordToken(token string, semitones int) string {
	if chord, bass, ok := strings.Cut(token, "/"); ok {
		return transposeNote(chord, semitones) + "/" + transposeNote(bass, semitones)
	}
	return transposeNote(token, semitones)
}

// TransposeLine replaces every chord symbol in line, leaving lyrics,
// punctuation and spacing untouched.
func TransposeLine(line string, semitones int) string {
	if mod12(semitones) == 0 {
		return line
	}
	var sb strings.Builder
	last := 0
	for _, span := range chordSpans(line) {
		sb.WriteString(line[last:span[0]])
		sb.WriteString(TransposeChordToken(line[span[0]:span[1]], semitones))
		last = span[1]
	}
	sb.WriteString(line[last:])
	return sb.String()
}

// TransposeContent moves a whole chord sheet from one key to another. The
// first non-blank line is the song title and is never transposed. Equal or
// unknown keys return content unchanged.
func TransposeContent(content, fromKey, toKey string) string {
	semitones := SemitoneDistance(fromKey, toKey)
	if semitones == 0 {
		return content
	}

	lines := strings.Split(content, "\n")
	titleSeen := false
	for i, line := range lines {
		if !titleSeen && strings.TrimSpace(line) != "" {
			titleSeen = true
			continue
		}
		lines[i] = TransposeLine(line, semitones)
	}
	return strings.Join(lines, "\n")
}

// Chords lists the distinct chord symbols of a sheet in order of first
// appearance. The title line is skipped.
func Chords(content string) []string {
	seen := make(map[string]bool)
	var chords []string

	titleSeen := false
	for _, line := range strings.Split(content, "\n") {
		if !titleSeen && strings.TrimSpace(line) != "" {
			titleSeen = true
			continue
		}
		for _, span := range chordSpans(line) {
			chord := line[span[0]:span[1]]
			if !seen[chord] {
				seen[chord] = true
				chords = append(chords, chord)
			}
		}
	}
	return chords
}
