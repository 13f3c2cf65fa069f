package cifraclub

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// contentSelectors are tried in order; the chord sheet is rendered inside a
// single <pre> block.
var contentSelectors = []string{
	"div.cifra_cnt pre",
	"pre",
}

var (
	excessiveBreaksRegex = regexp.MustCompile(`\n{3,}`)

	entityReplacer = strings.NewReplacer(
		"&amp;", "&",
		"&nbsp;", " ",
		"&quot;", `"`,
		"&lt;", "<",
		"&gt;", ">",
		"\u00a0", " ",
	)
)

func newDocument(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func findContentBlock(doc *goquery.Document) *goquery.Selection {
	for _, selector := range contentSelectors {
		if sel := doc.Find(selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

// decodeEntities decodes the entities left over after text extraction, which
// only happens for double-escaped markup.
func decodeEntities(s string) string {
	return entityReplacer.Replace(s)
}

// ExtractContent returns the plain chord-sheet text of a page with chord
// markup stripped and tablature removed. It fails with a *ParseError only when
// the page has no content block.
func ExtractContent(html string) (string, error) {
	doc, err := newDocument(html)
	if err != nil {
		return "", &ParseError{Reason: "invalid html", Err: err}
	}

	block := findContentBlock(doc)
	if block == nil {
		return "", &ParseError{Reason: ErrContentNotFound.Error(), Err: ErrContentNotFound}
	}

	// Fingering diagrams embedded mid-line
	block.Find("span.tablatura, .tablatura").Remove()

	return cleanContent(block.Text()), nil
}

// cleanContent runs the line filter over block text and normalizes spacing
func cleanContent(text string) string {
	text = decodeEntities(strings.ReplaceAll(text, "\r\n", "\n"))

	var kept []string
	var filter tabFilter
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if filter.next(line) == dropLine {
			continue
		}
		kept = append(kept, line)
	}

	content := strings.Join(kept, "\n")
	content = excessiveBreaksRegex.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
