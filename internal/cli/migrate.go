package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"form-submissions/internal/common/database"
	"form-submissions/internal/common/logger"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the submission tables if they do not exist",
		Long: `Apply the schema for form_configurations, form_fields, form_submissions
and submission_values to the configured database. Existing tables are left
untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), rootOpts)
		},
	}
}

func runMigrate(ctx context.Context, opts *RootOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	zapLog := newLogger(cfg, opts, "")
	defer func() { _ = zapLog.Sync() }()
	log := logger.NewZapAdapter(zapLog)

	store, err := openStore(ctx, cfg.Database, opts.ConnectRetries, log)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := database.Migrate(ctx, store.GetDB(), cfg.Database.Driver); err != nil {
		return err
	}
	log.Info("schema applied", map[string]interface{}{"driver": cfg.Database.Driver})
	return nil
}
