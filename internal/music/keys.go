// Package music implements pitch-class arithmetic for chord sheets: enharmonic
// normalization, semitone distances, chord transposition and relative keys.
//
// Every function in this package is pure and safe for concurrent use.
package music

import (
	"regexp"
	"strings"
)

// AvailableKeys is the ordered list of canonical pitch classes. Keys detected by
// the parser and keys accepted by the transposer are always one of these.
var AvailableKeys = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var naturalIndex = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

var accidentalOffset = map[string]int{
	"":   0,
	"#":  1,
	"##": 2,
	"b":  -1,
	"bb": -2,
}

var pitchRegex = regexp.MustCompile(`^([A-G])(##|#|bb|b)?$`)

// minorKeyRegex accepts "Am", "Bbm", "C#min".
var minorKeyRegex = regexp.MustCompile(`^([A-G](?:##|#|bb|b)?)(?:m|min)$`)

func mod12(i int) int {
	return ((i % 12) + 12) % 12
}

// NormalizePitchClass maps a note spelling onto the canonical sharp-based set:
// Db→C#, E#→F, Cb→B, C##→D, Cbb→A# and so on. Canonical tokens pass through and
// unrecognized tokens are returned unchanged.
func NormalizePitchClass(token string) string {
	m := pitchRegex.FindStringSubmatch(token)
	if m == nil {
		return token
	}
	return AvailableKeys[mod12(naturalIndex[m[1][0]]+accidentalOffset[m[2]])]
}

// IndexOf returns the chromatic index (C=0) of a note after normalization.
func IndexOf(token string) (int, bool) {
	normalized := NormalizePitchClass(strings.TrimSpace(token))
	for i, key := range AvailableKeys {
		if key == normalized {
			return i, true
		}
	}
	return 0, false
}

// IsKey reports whether token names one of the twelve pitch classes in any
// supported spelling.
func IsKey(token string) bool {
	_, ok := IndexOf(token)
	return ok
}

// SemitoneDistance returns the upward interval in [0,11] from fromKey to toKey.
// Unknown keys yield 0 so that callers degrade to an identity transposition.
func SemitoneDistance(fromKey, toKey string) int {
	from, ok := IndexOf(fromKey)
	if !ok {
		return 0
	}
	to, ok := IndexOf(toKey)
	if !ok {
		return 0
	}
	return (to - from + 12) % 12
}

// ConvertMinorToRelativeMajor returns the relative major of a minor key token
// (Em→G, Bbm→C#). Keys without an "m" and unknown minor tokens are returned
// unchanged.
func ConvertMinorToRelativeMajor(key string) string {
	if !strings.Contains(strings.ToLower(key), "m") {
		return key
	}
	m := minorKeyRegex.FindStringSubmatch(strings.TrimSpace(key))
	if m == nil {
		return key
	}
	idx, ok := IndexOf(m[1])
	if !ok {
		return key
	}
	return AvailableKeys[mod12(idx+3)]
}
