package cifraclub

import (
	stdhtml "html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sukalov/cifras/internal/logger"
	"github.com/sukalov/cifras/internal/music"
)

const keyScanLines = 20

var (
	titleSeparatorRegex = regexp.MustCompile(`\s+[-–|:]\s+`)
	brandRegex          = regexp.MustCompile(`(?i)^(?:cifra\s*club|letras\.mus\.br|letras)$`)
	breadcrumbRegex     = regexp.MustCompile(`(?i)Mais acessadas de\s*(?:<[^>]*>\s*)*([^<]+)`)
	descriptionRegex    = regexp.MustCompile(`\(([^)]+)\)\s+no Cifra Club`)
	artistImageRegex    = regexp.MustCompile(`(?i)https?://[^\s"'<>()]*(?:cdn|akamaized|artist|artista|foto|photo)[^\s"'<>()]*\.(?:jpe?g|png|webp|gif)`)
	tomTagRegex         = regexp.MustCompile(`(?i:tom):\s*<[^>]+>\s*([A-G](?:#|b)?m?)\s*<`)
	keyTokenRegex       = regexp.MustCompile(`(?:^|[^\w#])([A-G](?:#|b)?m?)(?:[^\w#]|$)`)
	quoteReplacer       = strings.NewReplacer(`"`, "", "'", "", "“", "", "”", "", "‘", "", "’", "", "«", "", "»", "")
)

// sanitize decodes entities, collapses whitespace and strips quotes. An empty
// result is treated as a miss.
func sanitize(s string) *string {
	s = stdhtml.UnescapeString(s)
	s = strings.Join(strings.Fields(s), " ")
	s = strings.TrimSpace(quoteReplacer.Replace(s))
	if s == "" {
		return nil
	}
	return &s
}

// firstOf returns the first strategy that yields a non-empty sanitized value
func firstOf(strategies ...func() string) *string {
	for _, strategy := range strategies {
		if v := sanitize(strategy()); v != nil {
			return v
		}
	}
	return nil
}

// titleParts splits "Song - Artist - Cifra Club" into its segments without
// the trailing site brand.
func titleParts(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := titleSeparatorRegex.Split(s, -1)
	for len(parts) > 0 && brandRegex.MatchString(strings.TrimSpace(parts[len(parts)-1])) {
		parts = parts[:len(parts)-1]
	}
	return parts
}

func firstPart(s string) string {
	if parts := titleParts(s); len(parts) > 0 {
		return parts[0]
	}
	return ""
}

func lastPart(s string) string {
	if parts := titleParts(s); len(parts) > 1 {
		return parts[len(parts)-1]
	}
	return ""
}

func metaContent(doc *goquery.Document, selector string) string {
	v, _ := doc.Find(selector).First().Attr("content")
	return v
}

func keyToken(s string) string {
	if m := keyTokenRegex.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

// ExtractMetadata collects title, performer, artist photo and key from a page.
// It never fails; fields that cannot be found are left nil.
func ExtractMetadata(page string, sourceURL string) Metadata {
	doc, err := newDocument(page)
	if err != nil {
		logger.Debug("metadata: could not parse html", "url", sourceURL, "err", err)
		return Metadata{}
	}

	ogTitle := metaContent(doc, `meta[property="og:title"]`)
	htmlTitle := doc.Find("title").First().Text()

	meta := Metadata{
		Title: firstOf(
			func() string { return firstPart(ogTitle) },
			func() string { return firstPart(htmlTitle) },
			func() string { return doc.Find("h1").First().Text() },
			func() string { return slugToTitle(pathSegment(sourceURL, 1)) },
		),
		PerformerOrVersion: firstOf(
			func() string { return lastPart(ogTitle) },
			func() string { return lastPart(htmlTitle) },
			func() string { return submatch(breadcrumbRegex, page) },
			func() string {
				return doc.Find(`a.artist, a[class*="artist"], [class*="artist"] a, h2.t3 a`).First().Text()
			},
			func() string {
				v, _ := doc.Find("[data-artist]").First().Attr("data-artist")
				return v
			},
			func() string {
				return submatch(descriptionRegex, metaContent(doc, `meta[name="description"]`))
			},
			func() string { return slugToTitle(pathSegment(sourceURL, 0)) },
		),
		ArtistPhotoURL: firstOf(
			func() string { return sideMenuImage(doc) },
			func() string { return artistImageRegex.FindString(page) },
			func() string { return metaContent(doc, `meta[property="og:image"]`) },
		),
		OriginalKey: extractKey(doc, page),
	}

	if meta.Title == nil {
		logger.Debug("metadata: title not found", "url", sourceURL)
	}
	if meta.PerformerOrVersion == nil {
		logger.Debug("metadata: performer not found", "url", sourceURL)
	}
	if meta.ArtistPhotoURL == nil {
		logger.Debug("metadata: artist photo not found", "url", sourceURL)
	}
	if meta.OriginalKey == nil {
		logger.Debug("metadata: key not found", "url", sourceURL)
	}

	return meta
}

func submatch(re *regexp.Regexp, s string) string {
	if m := re.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func sideMenuImage(doc *goquery.Document) string {
	img := doc.Find(`#side-menu img, .side-menu img, [class*="sideMenu"] img`).First()
	if src, ok := img.Attr("src"); ok && src != "" {
		return src
	}
	src, _ := img.Attr("data-src")
	return src
}

// extractKey finds the original key and always reports it as a major key
func extractKey(doc *goquery.Document, page string) *string {
	key := firstOf(
		func() string {
			v, _ := doc.Find("[data-key]").First().Attr("data-key")
			return keyToken(v)
		},
		func() string { return submatch(tomTagRegex, page) },
		func() string { return keyToken(doc.Find(`[id*="cifra_tom"]`).First().Text()) },
		func() string {
			var found string
			doc.Find(`[class*="key"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
				found = keyToken(s.Text())
				return found == ""
			})
			return found
		},
		func() string {
			// cleaned content has no tablature, so string letters are never read as keys
			content, err := ExtractContent(page)
			if err != nil {
				return ""
			}
			lines := strings.Split(content, "\n")
			if len(lines) > keyScanLines {
				lines = lines[:keyScanLines]
			}
			for _, line := range lines {
				if token := keyToken(line); token != "" {
					return token
				}
			}
			return ""
		},
	)
	if key == nil {
		return nil
	}

	major := music.ConvertMinorToRelativeMajor(*key)
	if music.IsKey(major) {
		major = music.NormalizePitchClass(major)
	}
	return &major
}
