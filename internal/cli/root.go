// Package cli is the mineraly command line: the web viewer, a terminal
// browser and one-shot inspection and query commands over a CSV export.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/mineraly/internal/catalog"
	"github.com/JonMunkholm/mineraly/internal/logging"
	"github.com/JonMunkholm/mineraly/internal/source"
)

// Version is set at build time.
var Version = "dev"

// sourceFlags tune how a file or URL argument is read.
type sourceFlags struct {
	charset  string
	timeout  time.Duration
	maxBytes int64
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.charset, "charset", "windows-1250", "fallback charset for files that are not UTF-8 (none disables)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "fetch timeout")
	cmd.Flags().Int64Var(&f.maxBytes, "max-bytes", source.DefaultMaxBytes, "largest accepted input in bytes")
}

// open returns the source for a path or http(s) URL.
func (f *sourceFlags) open(location string) (source.Source, error) {
	fallback, err := source.Charset(f.charset)
	if err != nil {
		return nil, err
	}
	return source.Open(location, source.Options{MaxBytes: f.maxBytes, Fallback: fallback}), nil
}

// load fetches and parses the export at location.
func (f *sourceFlags) load(ctx context.Context, location string) (*catalog.Dataset, error) {
	src, err := f.open(location)
	if err != nil {
		return nil, err
	}
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	text, err := src.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	d, ok := catalog.Parse(text)
	if !ok {
		return nil, fmt.Errorf("%s: no header and data rows", src.Name())
	}
	return d, nil
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	var logLevel, logFormat string

	root := &cobra.Command{
		Use:           "mineraly",
		Short:         "Viewer for a mineral collection kept as a CSV export",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupWriter(cmd.ErrOrStderr(), logLevel, logFormat)
		},
	}
	root.CompletionOptions.HiddenDefaultCmd = true
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(
		newServeCmd(),
		newInspectCmd(),
		newQueryCmd(),
		newBrowseCmd(),
	)
	return root
}

// Execute runs the command line with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}
