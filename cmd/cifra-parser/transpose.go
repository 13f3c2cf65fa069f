package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sukalov/cifras/internal/music"
	"github.com/urfave/cli/v3"
)

// transposeBody transposes content that has no title line
func transposeBody(content, from, to string) string {
	const marker = "-"
	transposed := music.TransposeContent(marker+"\n"+content, from, to)
	return strings.TrimPrefix(transposed, marker+"\n")
}

// Transpose shifts every chord of a text file from one key to another. The
// first non-blank line is kept as the title.
func (r *Runner) Transpose(ctx context.Context, cmd *cli.Command) error {
	from, to := cmd.String("from"), cmd.String("to")
	for _, key := range []string{from, to} {
		if !music.IsKey(music.ConvertMinorToRelativeMajor(key)) {
			return fmt.Errorf("unknown key %q", key)
		}
	}

	var data []byte
	var err error
	if path := cmd.Args().First(); path != "" && path != "-" {
		data, err = os.ReadFile(path)
	} else {
		data, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}
	if len(data) == 0 {
		return errors.New("nothing to transpose")
	}

	from = music.ConvertMinorToRelativeMajor(from)
	to = music.ConvertMinorToRelativeMajor(to)
	r.logger.Debug("transposing", "from", from, "to", to, "semitones", music.SemitoneDistance(from, to))

	return r.writePlain("%s\n", strings.TrimRight(music.TransposeContent(string(data), from, to), "\n"))
}

// Keys prints the twelve keys chords are written in
func (r *Runner) Keys(ctx context.Context, cmd *cli.Command) error {
	return r.writePlain("%s\n", strings.Join(music.AvailableKeys, " "))
}

func transposeCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "transpose",
		Usage:     "Transpose a chord sheet text file (or stdin)",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "from",
				Usage:    "Key the sheet is written in (minor keys use their relative major)",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "to",
				Usage:    "Target key",
				Required: true,
			},
		},
		Action: r.Transpose,
	}
}

func keysCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "keys",
		Usage:  "List the available keys",
		Action: r.Keys,
	}
}
