package submission

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"form-submissions/internal/common/logger"
	"form-submissions/internal/common/metrics"
	"form-submissions/internal/models"
)

const (
	insertFormQuery       = `INSERT INTO form_configurations (name) VALUES ($1) RETURNING id`
	insertFieldQuery      = `INSERT INTO form_fields (form_id, field_type, label, field_order) VALUES ($1, $2, $3, $4) RETURNING id`
	insertSubmissionQuery = `INSERT INTO form_submissions (form_id) VALUES ($1) RETURNING id`
	insertValueQuery      = `INSERT INTO submission_values (submission_id, field_id, value) VALUES ($1, $2, $3)`
)

const DefaultFormName = "New Form"

// TxBeginner is the part of *sql.DB the writer needs.
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// FieldIDMap correlates client field ids with the ids generated for the
// stored fields. It lives for one submission only.
type FieldIDMap map[models.ClientID]int64

// Result is returned after a successful commit.
type Result struct {
	FormID        int64
	FormName      string
	SubmissionID  int64
	Fields        []models.FormField
	Values        []models.WrittenValue
	UnmatchedKeys []string
}

type Writer struct {
	db       TxBeginner
	formName string
	logger   logger.Logger
	tracer   trace.Tracer
}

type Option func(*Writer)

// WithFormName sets the name given to every created form. Blank names are
// ignored so a form can always be created.
func WithFormName(name string) Option {
	return func(w *Writer) {
		if name != "" {
			w.formName = name
		}
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(w *Writer) {
		w.tracer = tracer
	}
}

func NewWriter(db TxBeginner, log logger.Logger, opts ...Option) *Writer {
	w := &Writer{
		db:       db,
		formName: DefaultFormName,
		logger:   log,
		tracer:   otel.Tracer("form-submissions/submission"),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Submit stores a new form built from req.Fields and one submission of
// req.FormData inside a single transaction. Either every row is committed or
// none is. formData keys that match no field are skipped and reported in
// Result.UnmatchedKeys. Store failures are returned as *StepError.
//
// Submit is not idempotent: every call creates a new form.
func (w *Writer) Submit(ctx context.Context, req models.SubmitRequest) (res *Result, err error) {
	start := time.Now()
	state := StateStarted

	ctx, span := w.tracer.Start(ctx, "submission.Submit", trace.WithAttributes(
		attribute.Int("submission.fields", len(req.Fields)),
		attribute.Int("submission.values", len(req.FormData)),
	))
	defer func() {
		status := "success"
		if err != nil {
			status = "failure"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.SetAttributes(attribute.String("submission.state", state.String()))
		span.End()
		metrics.SubmissionDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}()

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &StepError{State: state, Step: stepBeginTx, Err: err}
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			w.logger.Error("rollback failed", map[string]interface{}{
				"state": state.String(),
				"error": rbErr,
			})
		}
		w.logger.Warn("submission rolled back", map[string]interface{}{
			"state": state.String(),
		})
		state = StateRolledBack
	}()

	res = &Result{FormName: w.formName}

	if err = tx.QueryRowContext(ctx, insertFormQuery, w.formName).Scan(&res.FormID); err != nil {
		return nil, storeFault(state, err)
	}
	state = StateFormCreated
	w.logger.Info("form configuration created", map[string]interface{}{
		"formId": res.FormID,
		"name":   w.formName,
	})

	fieldIDs := make(FieldIDMap, len(req.Fields))
	byStorageID := make(map[int64]models.FormField, len(req.Fields))
	for i, field := range req.Fields {
		stored := models.FormField{
			FormID:    res.FormID,
			FieldType: field.Type,
			Label:     field.Label,
			Order:     i,
		}
		if err = tx.QueryRowContext(ctx, insertFieldQuery, res.FormID, field.Type, field.Label, i).Scan(&stored.ID); err != nil {
			return nil, storeFault(state, err)
		}
		// A repeated client id resolves to the last field that carried it.
		fieldIDs[field.ID] = stored.ID
		byStorageID[stored.ID] = stored
		res.Fields = append(res.Fields, stored)

		w.logger.Debug("form field created", map[string]interface{}{
			"formId":        res.FormID,
			"fieldId":       stored.ID,
			"clientFieldId": string(field.ID),
			"order":         i,
		})
	}
	state = StateFieldsCreated

	if err = tx.QueryRowContext(ctx, insertSubmissionQuery, res.FormID).Scan(&res.SubmissionID); err != nil {
		return nil, storeFault(state, err)
	}
	state = StateSubmissionCreated
	w.logger.Info("form submission created", map[string]interface{}{
		"formId":       res.FormID,
		"submissionId": res.SubmissionID,
	})

	keys := make([]string, 0, len(req.FormData))
	for key := range req.FormData {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fieldID, ok := fieldIDs[models.ClientID(key)]
		if !ok {
			res.UnmatchedKeys = append(res.UnmatchedKeys, key)
			metrics.UnmatchedValues.Inc()
			w.logger.Warn("no field matches submitted value", map[string]interface{}{
				"submissionId":  res.SubmissionID,
				"clientFieldId": key,
			})
			continue
		}

		value := req.FormData[key].String()
		if _, err = tx.ExecContext(ctx, insertValueQuery, res.SubmissionID, fieldID, value); err != nil {
			return nil, storeFault(state, err)
		}
		field := byStorageID[fieldID]
		res.Values = append(res.Values, models.WrittenValue{
			ClientFieldID: models.ClientID(key),
			FieldID:       fieldID,
			FieldType:     field.FieldType,
			Label:         field.Label,
			Value:         value,
		})
	}
	state = StateValuesWritten

	if err = tx.Commit(); err != nil {
		return nil, storeFault(state, err)
	}
	committed = true
	state = StateCommitted
	metrics.SubmissionFieldsWritten.Add(float64(len(res.Fields)))

	w.logger.Info("submission committed", map[string]interface{}{
		"formId":       res.FormID,
		"submissionId": res.SubmissionID,
		"fields":       len(res.Fields),
		"values":       len(res.Values),
		"unmatched":    len(res.UnmatchedKeys),
	})

	return res, nil
}
