package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"form-submissions/internal/common/http"
	"form-submissions/internal/submission"
)

const submitPath = "/api/submit-form"

type submitOptions struct {
	file    string
	format  string
	url     string
	timeout time.Duration
}

// NewSubmitCommand creates the submit command.
func NewSubmitCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &submitOptions{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Store one submission read from a file",
		Long: `Read a {fields, formData} payload from a JSON or YAML file and store it.

Without --url the payload is written straight to the configured database and
the submission receipt is printed. With --url it is posted to a running
form-service and the response body is printed.

Example:
  form-service submit --file submission.yaml
  cat submission.json | form-service submit --file -
  form-service submit --file submission.json --url http://localhost:3001`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readPayload(opts.file, opts.format, cmd.InOrStdin())
			if err != nil {
				return err
			}
			if opts.url != "" {
				return postSubmission(cmd.Context(), cmd.OutOrStdout(), opts, raw)
			}
			return runSubmit(cmd.Context(), cmd.OutOrStdout(), rootOpts, raw)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "payload file, or - for stdin (required)")
	cmd.Flags().StringVar(&opts.format, "format", formatAuto, "payload format: auto|json|yaml")
	cmd.Flags().StringVar(&opts.url, "url", "", "base URL of a running form-service")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout when --url is set")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runSubmit(ctx context.Context, out io.Writer, opts *RootOptions, raw []byte) error {
	a, err := bootstrap(ctx, opts, "stderr")
	if err != nil {
		return err
	}
	defer a.Close()

	receipt, err := a.service.SubmitJSON(ctx, submission.TransportCLI, raw)
	if err != nil {
		return err
	}

	return printJSON(out, receipt)
}

func postSubmission(ctx context.Context, out io.Writer, opts *submitOptions, raw []byte) error {
	client := http.NewClient(opts.url, opts.timeout)

	resp, err := client.PostJSON(ctx, submitPath, raw)
	if err != nil {
		return err
	}

	if _, err := out.Write(resp.Body); err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("form-service responded with status %d", resp.StatusCode)
	}
	return nil
}

func printJSON(out io.Writer, v interface{}) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
