package cifraclub

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrContentNotFound = errors.New("content block not found")
	ErrFetchFailed     = errors.New("failed to fetch page")
)

// ParseError is returned when a page does not have the chord-sheet layout the
// parser understands. Callers should fall back to manual content entry.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SectionKind classifies a chord-sheet section heading
type SectionKind string

const (
	SectionIntro  SectionKind = "intro"
	SectionVerse  SectionKind = "verse"
	SectionChorus SectionKind = "chorus"
	SectionBridge SectionKind = "bridge"
	SectionOutro  SectionKind = "outro"
	SectionSolo   SectionKind = "solo"
	SectionTab    SectionKind = "tab"
	SectionOther  SectionKind = "other"
)

// Section is a labeled run of chord-sheet lines. Label is the raw heading,
// e.g. "[Refrão]", and is empty for lines that appear before any heading.
type Section struct {
	Kind  SectionKind `json:"kind"`
	Label string      `json:"label"`
	Lines []string    `json:"lines"`
}

// Metadata holds best-effort page metadata. A nil field was not found.
type Metadata struct {
	Title              *string `json:"title,omitempty"`
	PerformerOrVersion *string `json:"performer_or_version,omitempty"`
	ArtistPhotoURL     *string `json:"artist_photo_url,omitempty"`
	OriginalKey        *string `json:"original_key,omitempty"`
}

// ParsedSheet is the structured result of parsing one chord sheet
type ParsedSheet struct {
	Metadata   Metadata  `json:"metadata"`
	Sections   []Section `json:"sections"`
	RawContent string    `json:"raw_content"`
}

// Result represents a fetched and parsed page
type Result struct {
	URL       string       `json:"url"`
	Sheet     *ParsedSheet `json:"sheet,omitempty"`
	FetchedAt time.Time    `json:"fetched_at"`
	Success   bool         `json:"success"`
	Error     string       `json:"error,omitempty"`
}
