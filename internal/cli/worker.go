package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/spf13/cobra"

	"form-submissions/internal/api"
	"form-submissions/internal/common/camunda"
	"form-submissions/internal/common/config"
	submitform "form-submissions/internal/workers/forms/submit-form"
)

// NewWorkerCommand creates the worker command.
func NewWorkerCommand(rootOpts *RootOptions) *cobra.Command {
	var opsAddress string

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run the submit-form Zeebe job worker",
		Long: `Poll the Zeebe gateway for submit-form jobs. Job variables carry the
payload ({fields, formData}); the job completes with {formId, submissionId,
unmatchedKeys}.

Health and metrics are served on --ops-address.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWorker(ctx, rootOpts, opsAddress)
		},
	}

	cmd.Flags().StringVar(&opsAddress, "ops-address", ":8080", "listen address for /health, /ready and /metrics")

	return cmd
}

func runWorker(ctx context.Context, opts *RootOptions, opsAddress string) error {
	a, err := bootstrap(ctx, opts, "")
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.cfg.Camunda.Enabled {
		return fmt.Errorf("camunda.enabled is false; nothing to poll")
	}

	var zeebe *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebe, err = camunda.NewClient(ctx, a.cfg.Camunda)
		return err
	}, opts.ConnectRetries, retryDelay, a.log, "Zeebe client initialization")
	if err != nil {
		return err
	}
	a.closers = append(a.closers, zeebe.Close)
	a.log.Info("Zeebe client connected", map[string]interface{}{"gateway": a.cfg.Camunda.BrokerAddress})

	wcfg := config.GetWorkerConfig(a.cfg, submitform.TaskType)
	handler := submitform.NewHandler(submitform.LoadConfig(wcfg), a.service, a.log)

	var jobWorkers []worker.JobWorker
	if jw := camunda.StartWorker(zeebe.GetClient(), submitform.TaskType, wcfg, handler, a.log); jw != nil {
		jobWorkers = append(jobWorkers, jw)
	}

	srv := &http.Server{
		Addr:    opsAddress,
		Handler: api.NewOpsRouter(a.log, api.NewHealthHandler(a.store)),
	}
	err = listenAndShutdown(ctx, srv, a)

	for _, jw := range jobWorkers {
		jw.Close()
		jw.AwaitClose()
	}
	a.log.Info("workers stopped", nil)
	return err
}
