package submission

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	apperrors "form-submissions/internal/common/errors"
	"form-submissions/internal/common/logger"
	"form-submissions/internal/common/metrics"
	"form-submissions/internal/common/validation"
	"form-submissions/internal/models"
)

// Transport names used in metrics, logs and receipts.
const (
	TransportHTTP   = "http"
	TransportWorker = "worker"
	TransportCLI    = "cli"
)

const sinkTimeout = 5 * time.Second

// Sink receives a receipt for every committed submission. Sink failures
// never undo a commit.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, receipt *models.SubmissionReceipt) error
}

// Service validates raw payloads, runs the Writer under a deadline and fans
// committed submissions out to the configured sinks.
type Service struct {
	writer  *Writer
	sinks   []Sink
	timeout time.Duration
	logger  logger.Logger
	now     func() time.Time
}

func NewService(writer *Writer, timeout time.Duration, log logger.Logger, sinks ...Sink) *Service {
	return &Service{
		writer:  writer,
		sinks:   sinks,
		timeout: timeout,
		logger:  log,
		now:     time.Now,
	}
}

// Decode validates the shape of raw and decodes it. Shape problems are
// returned as an INVALID_PAYLOAD StandardError.
func Decode(raw []byte) (models.SubmitRequest, error) {
	var req models.SubmitRequest

	result, err := validation.ValidatePayload(raw)
	if err != nil {
		return req, apperrors.NewInternalError(err)
	}
	if !result.Valid {
		return req, apperrors.NewInvalidPayloadError(result.GetErrorMessages())
	}

	if err := json.Unmarshal(raw, &req); err != nil {
		return req, apperrors.NewInvalidPayloadError([]string{err.Error()})
	}
	return req, nil
}

// SubmitJSON decodes raw and submits it. See Submit.
func (s *Service) SubmitJSON(ctx context.Context, transport string, raw []byte) (*models.SubmissionReceipt, error) {
	req, err := Decode(raw)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues(transport, "invalid").Inc()
		return nil, err
	}
	return s.Submit(ctx, transport, req)
}

// Submit writes req and returns the receipt of the committed submission.
// Errors are *errors.StandardError: FORM_SUBMISSION_FAILED for store faults,
// SUBMISSION_TIMEOUT when the deadline expired first.
func (s *Service) Submit(ctx context.Context, transport string, req models.SubmitRequest) (*models.SubmissionReceipt, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	log := s.logger.WithFields(map[string]interface{}{"transport": transport})

	res, err := s.writer.Submit(ctx, req)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues(transport, "failed").Inc()
		log.Error("form submission failed", map[string]interface{}{"error": err})
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, apperrors.NewSubmissionTimeoutError(err)
		}
		return nil, apperrors.NewFormSubmissionFailedError(err)
	}
	metrics.SubmissionsTotal.WithLabelValues(transport, "success").Inc()

	receipt := &models.SubmissionReceipt{
		EventID:       uuid.NewString(),
		FormID:        res.FormID,
		FormName:      res.FormName,
		SubmissionID:  res.SubmissionID,
		Fields:        res.Fields,
		Values:        res.Values,
		UnmatchedKeys: res.UnmatchedKeys,
		Transport:     transport,
		SubmittedAt:   s.now().UTC(),
	}

	s.deliver(ctx, log, receipt)
	return receipt, nil
}

// deliver runs every sink in order. The caller's cancellation is detached so
// a client hanging up after the commit does not drop the notifications.
func (s *Service) deliver(ctx context.Context, log logger.Logger, receipt *models.SubmissionReceipt) {
	if len(s.sinks) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sinkTimeout)
	defer cancel()

	for _, sink := range s.sinks {
		if err := sink.Deliver(ctx, receipt); err != nil {
			metrics.SinkFailures.WithLabelValues(sink.Name()).Inc()
			log.Warn("post-commit sink failed", map[string]interface{}{
				"sink":         sink.Name(),
				"submissionId": receipt.SubmissionID,
				"error":        err,
			})
		}
	}
}
