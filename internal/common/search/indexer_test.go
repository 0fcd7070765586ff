package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "form-submissions/internal/common/errors"
	"form-submissions/internal/common/logger"
	"form-submissions/internal/models"
)

type recordedRequest struct {
	Method string
	Path   string
	Body   []byte
}

// fakeElasticsearch answers every request with status and body, recording
// what it received.
func fakeElasticsearch(t *testing.T, handler func(r *http.Request) (int, string)) (*elasticsearch.Client, *[]recordedRequest) {
	t.Helper()

	var mu sync.Mutex
	var requests []recordedRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		requests = append(requests, recordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
		mu.Unlock()

		status, resp := handler(r)
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses:    []string{srv.URL},
		DisableRetry: true,
	})
	require.NoError(t, err)
	return client, &requests
}

func testReceipt() *models.SubmissionReceipt {
	return &models.SubmissionReceipt{
		EventID:      "evt-1",
		FormID:       10,
		FormName:     "New Form",
		SubmissionID: 50,
		Values: []models.WrittenValue{
			{ClientFieldID: "f1", FieldID: 100, FieldType: "text", Label: "Name", Value: "Ann"},
			{ClientFieldID: "f2", FieldID: 101, FieldType: "checkbox", Label: "Agree", Value: "true"},
		},
		UnmatchedKeys: []string{"ghost"},
		Transport:     "worker",
		SubmittedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestIndexer_Deliver_IndexesBySubmissionID(t *testing.T) {
	client, requests := fakeElasticsearch(t, func(r *http.Request) (int, string) {
		return http.StatusCreated, `{"_index":"form-submissions","_id":"50","result":"created"}`
	})

	idx := NewIndexer(client, "form-submissions", logger.NewTestLogger(t))
	require.NoError(t, idx.Deliver(context.Background(), testReceipt()))

	require.Len(t, *requests, 1)
	req := (*requests)[0]
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/form-submissions/_doc/50", req.Path)

	var doc Document
	require.NoError(t, json.Unmarshal(req.Body, &doc))
	assert.Equal(t, int64(10), doc.FormID)
	assert.Equal(t, "worker", doc.Transport)
	assert.Equal(t, []string{"ghost"}, doc.UnmatchedKeys)
	assert.Equal(t, []DocumentValue{
		{FieldID: 100, FieldType: "text", Label: "Name", Value: "Ann"},
		{FieldID: 101, FieldType: "checkbox", Label: "Agree", Value: "true"},
	}, doc.Values)
}

func TestIndexer_Deliver_ErrorResponse(t *testing.T) {
	client, _ := fakeElasticsearch(t, func(r *http.Request) (int, string) {
		return http.StatusBadRequest, `{"error":{"type":"mapper_parsing_exception","reason":"failed to parse"},"status":400}`
	})

	idx := NewIndexer(client, "form-submissions", logger.NewTestLogger(t))
	err := idx.Deliver(context.Background(), testReceipt())
	require.Error(t, err)

	stdErr := apperrors.Normalize(err)
	assert.Equal(t, apperrors.ErrCodeSearchIndexFailed, stdErr.Code)
	assert.Contains(t, stdErr.Details, "mapper_parsing_exception")
}

func TestIndexer_EnsureIndex(t *testing.T) {
	t.Run("creates missing index", func(t *testing.T) {
		client, requests := fakeElasticsearch(t, func(r *http.Request) (int, string) {
			if r.Method == http.MethodHead {
				return http.StatusNotFound, ``
			}
			return http.StatusOK, `{"acknowledged":true,"index":"form-submissions"}`
		})

		idx := NewIndexer(client, "form-submissions", logger.NewTestLogger(t))
		require.NoError(t, idx.EnsureIndex(context.Background()))

		require.Len(t, *requests, 2)
		assert.Equal(t, http.MethodPut, (*requests)[1].Method)
		assert.Contains(t, string((*requests)[1].Body), `"nested"`)
	})

	t.Run("existing index is left alone", func(t *testing.T) {
		client, requests := fakeElasticsearch(t, func(r *http.Request) (int, string) {
			return http.StatusOK, ``
		})

		idx := NewIndexer(client, "form-submissions", logger.NewTestLogger(t))
		require.NoError(t, idx.EnsureIndex(context.Background()))
		assert.Len(t, *requests, 1)
	})
}
