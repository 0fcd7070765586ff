package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath     string
	LogLevel       string
	ConnectRetries int
}

// NewRootCommand creates the form-service command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "form-service",
		Short: "Store dynamic form definitions together with their submissions",
		Long: `form-service accepts a form definition (an ordered list of typed fields)
together with one filled-in response and stores both in a single transaction.

Submissions arrive over HTTP (serve), as Zeebe jobs (worker) or from a file
(submit).`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default: configs/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "override logging.level (debug|info|warn|error)")
	cmd.PersistentFlags().IntVar(&opts.ConnectRetries, "connect-retries", 10, "attempts when connecting to backing services")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewWorkerCommand(opts))
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))

	return cmd
}
