package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sukalov/cifras/internal/cifras/parsers/cifraclub"
	"github.com/urfave/cli/v3"
)

func optional(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

// loadPage reads a local HTML file or fetches a supported URL
func (r *Runner) loadPage(ctx context.Context, source string) (string, string, error) {
	if _, err := os.Stat(source); err == nil {
		data, err := os.ReadFile(source)
		if err != nil {
			return "", "", fmt.Errorf("failed to read %s: %w", source, err)
		}
		return string(data), "", nil
	}

	if !cifraclub.IsSupportedURL(source) {
		return "", "", fmt.Errorf("%s is neither a file nor a Cifra Club URL", source)
	}

	link := cifraclub.CanonicalURL(source)
	r.logger.Infof("fetching %s", link)
	page, err := r.fetcher.FetchPage(ctx, link)
	if err != nil {
		return "", "", err
	}
	return page, link, nil
}

// Parse prints the metadata and content of one chord sheet
func (r *Runner) Parse(ctx context.Context, cmd *cli.Command) error {
	source := cmd.Args().First()
	if source == "" {
		return errors.New("a URL or an HTML file is required")
	}

	page, link, err := r.loadPage(ctx, source)
	if err != nil {
		return err
	}
	if sourceURL := cmd.String("url"); sourceURL != "" {
		link = sourceURL
	}

	sheet, err := cifraclub.Parse(page, link)
	if err != nil {
		return err
	}

	if key := cmd.String("key"); key != "" && sheet.Metadata.OriginalKey != nil {
		sheet.RawContent = transposeBody(sheet.RawContent, *sheet.Metadata.OriginalKey, key)
	}

	if out := cmd.String("output"); out != "" {
		if err := os.WriteFile(out, []byte(sheet.RawContent), 0644); err != nil {
			return fmt.Errorf("failed to save %s: %w", out, err)
		}
		r.logger.Infof("content saved to %s", out)
	}

	if cmd.Bool("json") {
		return r.writeJSON(sheet)
	}

	r.writePlain("Title:     %s\n", optional(sheet.Metadata.Title))
	r.writePlain("Performer: %s\n", optional(sheet.Metadata.PerformerOrVersion))
	r.writePlain("Key:       %s\n", optional(sheet.Metadata.OriginalKey))
	r.writePlain("Photo:     %s\n\n", optional(sheet.Metadata.ArtistPhotoURL))

	if cmd.Bool("sections") {
		for _, section := range sheet.Sections {
			r.writePlain("== %s %s ==\n%s\n\n", section.Kind, section.Label, strings.Join(section.Lines, "\n"))
		}
		return nil
	}

	return r.writePlain("%s\n", sheet.RawContent)
}

func parseCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "parse",
		Usage:     "Extract a chord sheet from a Cifra Club URL or a saved HTML page",
		ArgsUsage: "<url|file>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Also save the extracted content to this file",
			},
			&cli.StringFlag{
				Name:  "url",
				Usage: "Source URL used for slug fallbacks when parsing a file",
			},
			&cli.StringFlag{
				Name:    "key",
				Aliases: []string{"k"},
				Usage:   "Transpose the content to this key",
			},
			&cli.BoolFlag{
				Name:  "sections",
				Usage: "Print the sheet section by section",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the parsed sheet as JSON",
			},
		},
		Action: r.Parse,
	}
}
