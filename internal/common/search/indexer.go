// Package search indexes committed submissions into Elasticsearch so they can
// be looked up by label and value.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	apperrors "form-submissions/internal/common/errors"
	"form-submissions/internal/common/logger"
	"form-submissions/internal/models"
)

const indexMapping = `{
  "mappings": {
    "properties": {
      "formId":       {"type": "long"},
      "formName":     {"type": "keyword"},
      "submissionId": {"type": "long"},
      "transport":    {"type": "keyword"},
      "submittedAt":  {"type": "date"},
      "unmatchedKeys": {"type": "keyword"},
      "values": {
        "type": "nested",
        "properties": {
          "fieldId":   {"type": "long"},
          "fieldType": {"type": "keyword"},
          "label":     {"type": "text", "fields": {"raw": {"type": "keyword"}}},
          "value":     {"type": "text"}
        }
      }
    }
  }
}`

// Document is the indexed form of a submission.
type Document struct {
	FormID        int64           `json:"formId"`
	FormName      string          `json:"formName"`
	SubmissionID  int64           `json:"submissionId"`
	Transport     string          `json:"transport"`
	SubmittedAt   time.Time       `json:"submittedAt"`
	UnmatchedKeys []string        `json:"unmatchedKeys,omitempty"`
	Values        []DocumentValue `json:"values"`
}

type DocumentValue struct {
	FieldID   int64  `json:"fieldId"`
	FieldType string `json:"fieldType"`
	Label     string `json:"label"`
	Value     string `json:"value"`
}

type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"sink": "elasticsearch", "index": index}),
	}
}

func (i *Indexer) Name() string {
	return "elasticsearch"
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (i *Indexer) EnsureIndex(ctx context.Context) error {
	res, err := i.client.Indices.Exists(
		[]string{i.index},
		i.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("check index %s: %w", i.index, err)
	}
	res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
	default:
		return fmt.Errorf("check index %s: %s", i.index, res.Status())
	}

	res, err = i.client.Indices.Create(
		i.index,
		i.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		i.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index %s: %w", i.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("create index %s: %s", i.index, readError(res.Body, res.Status()))
	}

	i.logger.Info("search index created", nil)
	return nil
}

// Deliver indexes receipt under its submission id, so a redelivery
// overwrites instead of duplicating.
func (i *Indexer) Deliver(ctx context.Context, receipt *models.SubmissionReceipt) error {
	body, err := json.Marshal(NewDocument(receipt))
	if err != nil {
		return apperrors.NewSearchIndexFailedError(i.index, err)
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(strconv.FormatInt(receipt.SubmissionID, 10)),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return apperrors.NewSearchIndexFailedError(i.index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return apperrors.NewSearchIndexFailedError(i.index, fmt.Errorf("%s", readError(res.Body, res.Status())))
	}

	i.logger.Debug("submission indexed", map[string]interface{}{
		"submissionId": receipt.SubmissionID,
	})
	return nil
}

func NewDocument(receipt *models.SubmissionReceipt) Document {
	doc := Document{
		FormID:        receipt.FormID,
		FormName:      receipt.FormName,
		SubmissionID:  receipt.SubmissionID,
		Transport:     receipt.Transport,
		SubmittedAt:   receipt.SubmittedAt,
		UnmatchedKeys: receipt.UnmatchedKeys,
		Values:        make([]DocumentValue, 0, len(receipt.Values)),
	}
	for _, v := range receipt.Values {
		doc.Values = append(doc.Values, DocumentValue{
			FieldID:   v.FieldID,
			FieldType: v.FieldType,
			Label:     v.Label,
			Value:     v.Value,
		})
	}
	return doc
}

func readError(body io.Reader, status string) string {
	var e struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&e); err != nil || e.Error.Type == "" {
		return status
	}
	return fmt.Sprintf("%s: %s: %s", status, e.Error.Type, e.Error.Reason)
}
