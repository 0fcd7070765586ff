package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	apperrors "form-submissions/internal/common/errors"
	"form-submissions/internal/common/logger"
	"form-submissions/internal/models"
	"form-submissions/internal/submission"
)

// maxBodyBytes bounds a submission payload.
const maxBodyBytes = 1 << 20

// Submitter is implemented by *submission.Service.
type Submitter interface {
	SubmitJSON(ctx context.Context, transport string, raw []byte) (*models.SubmissionReceipt, error)
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RequestRecorder is implemented by *observability.Observability.
type RequestRecorder interface {
	RecordRequest(ctx context.Context, transport, status string, duration time.Duration)
}

type SubmissionHandler struct {
	submitter Submitter
	recorder  RequestRecorder
	logger    logger.Logger
}

func NewSubmissionHandler(submitter Submitter, recorder RequestRecorder, log logger.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submitter: submitter,
		recorder:  recorder,
		logger:    log.WithFields(map[string]interface{}{"component": "http"}),
	}
}

// Submit stores a form definition and one response to it.
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	status := "success"
	defer func() {
		if h.recorder != nil {
			h.recorder.RecordRequest(r.Context(), submission.TransportHTTP, status, time.Since(start))
		}
	}()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		status = "invalid"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge, string(apperrors.ErrCodeInvalidPayload), nil)
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid form submission payload", string(apperrors.ErrCodeInvalidPayload), []string{"request body could not be read"})
		return
	}

	receipt, err := h.submitter.SubmitJSON(r.Context(), submission.TransportHTTP, body)
	if err != nil {
		status = "failed"
		h.writeSubmitError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, submitResponse{
		Message:      msgSubmitted,
		FormID:       receipt.FormID,
		SubmissionID: receipt.SubmissionID,
	})
}

// writeSubmitError maps err to a response. Store and driver details are
// logged, never returned.
func (h *SubmissionHandler) writeSubmitError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr := apperrors.Normalize(err)

	switch stdErr.Code {
	case apperrors.ErrCodeInvalidPayload:
		problems, _ := stdErr.Metadata["problems"].([]string)
		writeError(w, http.StatusBadRequest, stdErr.Message, string(stdErr.Code), problems)
	case apperrors.ErrCodeFormSubmissionFailed, apperrors.ErrCodeSubmissionTimeout:
		h.logger.Error("submission request failed", map[string]interface{}{
			"requestId": RequestIDFrom(r.Context()),
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		writeError(w, http.StatusInternalServerError, msgSubmitFailed, string(apperrors.ErrCodeFormSubmissionFailed), nil)
	default:
		h.logger.Error("unexpected submission error", map[string]interface{}{
			"requestId": RequestIDFrom(r.Context()),
			"error":     err,
		})
		writeError(w, http.StatusInternalServerError, msgUnexpectedError, string(apperrors.ErrCodeInternal), nil)
	}
}

type HealthHandler struct {
	store Pinger
	now   func() time.Time
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store, now: time.Now}
}

// Health reports that the process is serving.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "healthy", Time: h.now().UTC().Format(time.RFC3339)})
}

// Ready reports whether the relational store answers a ping.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		stdErr := apperrors.NewDatabaseConnectionFailedError(err)
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{
			Status: "unavailable",
			Time:   h.now().UTC().Format(time.RFC3339),
			Error:  stdErr.Message,
			Code:   string(stdErr.Code),
		})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ready", Time: h.now().UTC().Format(time.RFC3339)})
}
