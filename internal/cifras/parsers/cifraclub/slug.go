package cifraclub

import (
	"net/url"
	"path"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var slugConnectors = map[string]bool{
	"da": true, "de": true, "do": true, "das": true, "dos": true, "e": true, "di": true,
}

// pathSegment returns the n-th non-empty path segment of a URL with any file
// extension removed.
func pathSegment(sourceURL string, n int) string {
	u, err := url.Parse(sourceURL)
	if err != nil {
		return ""
	}
	var segments []string
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	if n >= len(segments) {
		return ""
	}
	segment, err := url.PathUnescape(segments[n])
	if err != nil {
		segment = segments[n]
	}
	return strings.TrimSuffix(segment, path.Ext(segment))
}

// slugToTitle turns "aguas-purificadoras" into "Aguas Purificadoras" keeping
// Portuguese connectors lowercase unless they start the title.
func slugToTitle(slug string) string {
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	// A Caser holds state and is not shared between goroutines
	caser := cases.Title(language.BrazilianPortuguese)
	for i, word := range words {
		lower := strings.ToLower(word)
		if i > 0 && slugConnectors[lower] {
			words[i] = lower
			continue
		}
		words[i] = caser.String(word)
	}
	return strings.Join(words, " ")
}
