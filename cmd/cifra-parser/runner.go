package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/sukalov/cifras/internal/cifras/parsers/cifraclub"
	"github.com/sukalov/cifras/internal/config"
	"github.com/urfave/cli/v3"
)

// Runner holds the dependencies of the CLI commands
type Runner struct {
	config  *config.Config
	fetcher cifraclub.PageFetcher
	logger  *log.Logger
	output  io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config  *config.Config
	Fetcher cifraclub.PageFetcher
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(os.Stderr)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Fetcher == nil {
		opts.Fetcher = cifraclub.NewClient(cifraclub.ClientOptions{
			Timeout:           opts.Config.Fetch.Timeout(),
			UserAgent:         opts.Config.Fetch.UserAgent,
			RequestsPerSecond: opts.Config.Fetch.RequestsPerSecond,
			Burst:             opts.Config.Fetch.Burst,
		})
	}

	return &Runner{
		config:  opts.Config,
		fetcher: opts.Fetcher,
		logger:  opts.Logger,
		output:  opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		parseCommand, transposeCommand, importCommand, keysCommand, initCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any) error {
	output, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
