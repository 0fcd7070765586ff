// internal/workers/forms/submit-form/handler.go
package submitform

import (
	"context"
	"errors"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "form-submissions/internal/common/errors"
	"form-submissions/internal/common/logger"
	"form-submissions/internal/common/metrics"
	"form-submissions/internal/models"
	"form-submissions/internal/submission"
)

const (
	TaskType = "submit-form"
)

var ErrEmptyVariables = errors.New("job variables are empty")

// Submitter is implemented by *submission.Service.
type Submitter interface {
	SubmitJSON(ctx context.Context, transport string, raw []byte) (*models.SubmissionReceipt, error)
}

type Handler struct {
	config     *Config
	submitter  Submitter
	errHandler *apperrors.ErrorHandler
	logger     logger.Logger
}

func NewHandler(config *Config, submitter Submitter, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:     config,
		submitter:  submitter,
		errHandler: apperrors.NewErrorHandler(log),
		logger:     log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
		"retries":     job.Retries,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, job.Variables)
	if err != nil {
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, output)
}

func (h *Handler) execute(ctx context.Context, variables string) (*Output, error) {
	if variables == "" {
		return nil, apperrors.NewInvalidPayloadError([]string{ErrEmptyVariables.Error()})
	}

	receipt, err := h.submitter.SubmitJSON(ctx, submission.TransportWorker, []byte(variables))
	if err != nil {
		return nil, err
	}

	unmatched := receipt.UnmatchedKeys
	if unmatched == nil {
		unmatched = []string{}
	}

	return &Output{
		FormID:        receipt.FormID,
		SubmissionID:  receipt.SubmissionID,
		UnmatchedKeys: unmatched,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err,
		})
		return
	}

	h.logger.Info("job completed", map[string]interface{}{
		"jobKey":       job.Key,
		"formId":       output.FormID,
		"submissionId": output.SubmissionID,
	})
}

// Execute runs the job logic without a workflow client.
func (h *Handler) Execute(ctx context.Context, variables string) (*Output, error) {
	return h.execute(ctx, variables)
}
