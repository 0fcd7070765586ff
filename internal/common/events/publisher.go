// Package events publishes committed submissions to a Redis stream.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"form-submissions/internal/common/config"
	apperrors "form-submissions/internal/common/errors"
	"form-submissions/internal/common/logger"
	"form-submissions/internal/models"
)

const EventTypeSubmissionCreated = "form.submission.created"

// Publisher appends one stream entry per committed submission.
type Publisher struct {
	client redis.Cmdable
	stream string
	maxLen int64
	logger logger.Logger
}

func NewPublisher(client redis.Cmdable, cfg config.EventsConfig, log logger.Logger) *Publisher {
	return &Publisher{
		client: client,
		stream: cfg.Stream,
		maxLen: cfg.MaxLen,
		logger: log.WithFields(map[string]interface{}{"sink": "redis-stream", "stream": cfg.Stream}),
	}
}

func (p *Publisher) Name() string {
	return "redis-stream"
}

// Deliver writes receipt to the stream. The entry carries the ids as
// top-level fields for consumers that only route, and the full receipt as
// JSON under "payload".
func (p *Publisher) Deliver(ctx context.Context, receipt *models.SubmissionReceipt) error {
	args, err := p.xaddArgs(receipt)
	if err != nil {
		return apperrors.NewEventPublishFailedError(p.stream, err)
	}

	id, err := p.client.XAdd(ctx, args).Result()
	if err != nil {
		return apperrors.NewEventPublishFailedError(p.stream, err)
	}

	p.logger.Debug("submission event published", map[string]interface{}{
		"entryId":      id,
		"eventId":      receipt.EventID,
		"submissionId": receipt.SubmissionID,
	})
	return nil
}

func (p *Publisher) xaddArgs(receipt *models.SubmissionReceipt) (*redis.XAddArgs, error) {
	payload, err := json.Marshal(receipt)
	if err != nil {
		return nil, fmt.Errorf("marshal receipt: %w", err)
	}

	args := &redis.XAddArgs{
		Stream: p.stream,
		Values: []interface{}{
			"type", EventTypeSubmissionCreated,
			"eventId", receipt.EventID,
			"formId", receipt.FormID,
			"submissionId", receipt.SubmissionID,
			"payload", string(payload),
		},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	return args, nil
}
