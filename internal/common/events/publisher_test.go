package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"form-submissions/internal/common/config"
	apperrors "form-submissions/internal/common/errors"
	"form-submissions/internal/common/logger"
	"form-submissions/internal/models"
)

func testReceipt() *models.SubmissionReceipt {
	return &models.SubmissionReceipt{
		EventID:      "3f0c3c5e-8d0b-4a57-9d7e-1c2b3a4d5e6f",
		FormID:       10,
		FormName:     "New Form",
		SubmissionID: 50,
		Fields: []models.FormField{
			{ID: 100, FormID: 10, FieldType: "text", Label: "Name", Order: 0},
		},
		Values: []models.WrittenValue{
			{ClientFieldID: "f1", FieldID: 100, FieldType: "text", Label: "Name", Value: "Ann"},
		},
		Transport:   "http",
		SubmittedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestPublisher_Deliver_AppendsStreamEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	pub := NewPublisher(client, config.EventsConfig{Stream: "form-submissions", MaxLen: 100}, logger.NewTestLogger(t))
	require.NoError(t, pub.Deliver(context.Background(), testReceipt()))

	entries, err := client.XRange(context.Background(), "form-submissions", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)

	values := entries[0].Values
	assert.Equal(t, EventTypeSubmissionCreated, values["type"])
	assert.Equal(t, "3f0c3c5e-8d0b-4a57-9d7e-1c2b3a4d5e6f", values["eventId"])
	assert.Equal(t, "10", values["formId"])
	assert.Equal(t, "50", values["submissionId"])

	var decoded models.SubmissionReceipt
	require.NoError(t, json.Unmarshal([]byte(values["payload"].(string)), &decoded))
	assert.Equal(t, int64(50), decoded.SubmissionID)
	require.Len(t, decoded.Values, 1)
	assert.Equal(t, "Ann", decoded.Values[0].Value)
}

func TestPublisher_Deliver_Error(t *testing.T) {
	client, mock := redismock.NewClientMock()
	defer client.Close()

	pub := NewPublisher(client, config.EventsConfig{Stream: "form-submissions", MaxLen: 100}, logger.NewTestLogger(t))
	receipt := testReceipt()

	args, err := pub.xaddArgs(receipt)
	require.NoError(t, err)
	mock.ExpectXAdd(args).SetErr(errors.New("READONLY You can't write against a read only replica"))

	err = pub.Deliver(context.Background(), receipt)
	require.Error(t, err)

	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeEventPublishFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "form-submissions")
	assert.Contains(t, stdErr.Details, "READONLY")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPublisher_XAddArgs_NoTrimWithoutMaxLen(t *testing.T) {
	pub := NewPublisher(redis.NewClient(&redis.Options{}), config.EventsConfig{Stream: "s"}, logger.NewNoOpLogger())

	args, err := pub.xaddArgs(testReceipt())
	require.NoError(t, err)
	assert.Equal(t, "s", args.Stream)
	assert.Zero(t, args.MaxLen)
	assert.False(t, args.Approx)
}
