// Package cli implements the aggregator client command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/skyfeed/aggregator/internal/client"
	"github.com/skyfeed/aggregator/internal/config"
)

// ExitError carries a non-zero exit code whose message was already printed.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

type options struct {
	url     string
	apiKey  string
	timeout time.Duration
}

// NewRootCommand builds the client command with defaults taken from cfg.
func NewRootCommand(cfg *config.ClientConfig) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "aggregator-client",
		Short: "Call the data aggregator once and print the result",
		Long: `aggregator-client sends one GET request to the aggregate endpoint
with the X-API-Key header and prints the combined JSON document.

It exits with a non-zero status when the server is unreachable, the request
times out, or the server answers with anything other than 200.

Examples:
  # Call a local server with the default key
  aggregator-client

  # Call another host with a custom key and timeout
  aggregator-client --url http://agg.internal:8000/v1/aggregate --api-key s3cret --timeout 10s`,
		Args: cobra.NoArgs,
		// Don't show usage when there's an error
		SilenceUsage: true,
		// Errors are printed by the command itself
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", cfg.URL, "Aggregate endpoint URL (env AGGREGATOR_URL)")
	cmd.Flags().StringVar(&opts.apiKey, "api-key", cfg.APIKey, "API key sent in X-API-Key (env API_KEY)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", cfg.Timeout, "Overall request timeout (env CLIENT_TIMEOUT)")

	return cmd
}

func run(ctx context.Context, out io.Writer, opts *options) error {
	if opts.timeout <= 0 {
		return fmt.Errorf("--timeout must be positive, got %s", opts.timeout)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	c := client.New(opts.url, opts.apiKey, opts.timeout)
	client.PrintBanner(out, c)

	resp, err := c.Aggregate(ctx)
	if code := client.Report(out, opts.url, resp, err); code != 0 {
		return &ExitError{Code: code}
	}
	return nil
}

// Execute runs the client with args and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadClient()
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}

	cmd := NewRootCommand(cfg)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return 0
}
