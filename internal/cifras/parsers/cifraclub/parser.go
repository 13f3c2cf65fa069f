package cifraclub

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sukalov/cifras/internal/logger"
)

// PageFetcher retrieves raw page HTML
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (string, error)
}

// Parser fetches Cifra Club pages and parses them into chord sheets
type Parser struct {
	client PageFetcher
}

// NewParser creates a new Cifra Club parser. A nil fetcher uses a [Client]
// with default options.
func NewParser(client PageFetcher) *Parser {
	if client == nil {
		client = NewClient(ClientOptions{})
	}
	return &Parser{client: client}
}

// IsSupportedURL reports whether the URL points at a Cifra Club page
func IsSupportedURL(pageURL string) bool {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, domain := range []string{"cifraclub.com.br", "cifraclub.com"} {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return pathSegment(pageURL, 0) != ""
		}
	}
	return false
}

// CanonicalURL strips the query string and fragment so that the same song is
// stored once regardless of tracking parameters.
func CanonicalURL(pageURL string) string {
	u, err := url.Parse(strings.TrimSpace(pageURL))
	if err != nil {
		return pageURL
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// Parse extracts content, metadata and sections from one page
func Parse(page string, sourceURL string) (*ParsedSheet, error) {
	content, err := ExtractContent(page)
	if err != nil {
		return nil, err
	}

	sheet := ParseStructure(content)
	sheet.Metadata = ExtractMetadata(page, sourceURL)
	return &sheet, nil
}

// ExtractFromURL fetches a page and parses it
func (p *Parser) ExtractFromURL(ctx context.Context, pageURL string) (*Result, error) {
	logger.Debug(fmt.Sprintf("ExtractFromURL: fetching page %s", pageURL))

	page, err := p.client.FetchPage(ctx, pageURL)
	if err != nil {
		logger.Error(fmt.Sprintf("ExtractFromURL: failed to fetch page %s\nError: %v", pageURL, err))
		return &Result{
			URL:     pageURL,
			Success: false,
			Error:   err.Error(),
		}, err
	}

	logger.Debug(fmt.Sprintf("ExtractFromURL: fetched page %s (HTML length: %d chars)", pageURL, len(page)))

	sheet, err := Parse(page, pageURL)
	if err != nil {
		logger.Error(fmt.Sprintf("ExtractFromURL: content block not found for URL %s", pageURL))
		return &Result{
			URL:     pageURL,
			Success: false,
			Error:   err.Error(),
		}, err
	}

	logger.Success(fmt.Sprintf("ExtractFromURL: parsed %s (%d sections, %d chars)", pageURL, len(sheet.Sections), len(sheet.RawContent)))

	return &Result{
		URL:       pageURL,
		Sheet:     sheet,
		FetchedAt: time.Now(),
		Success:   true,
	}, nil
}
