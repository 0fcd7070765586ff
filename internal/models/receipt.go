// internal/models/receipt.go
package models

import "time"

// WrittenValue records one stored SubmissionValue together with the field it
// was correlated to.
type WrittenValue struct {
	ClientFieldID ClientID `json:"clientFieldId"`
	FieldID       int64    `json:"fieldId"`
	FieldType     string   `json:"fieldType"`
	Label         string   `json:"label"`
	Value         string   `json:"value"`
}

// SubmissionReceipt describes a committed submission. It is handed to the
// post-commit sinks and never written to the relational store.
type SubmissionReceipt struct {
	EventID       string         `json:"eventId"`
	FormID        int64          `json:"formId"`
	FormName      string         `json:"formName"`
	SubmissionID  int64          `json:"submissionId"`
	Fields        []FormField    `json:"fields"`
	Values        []WrittenValue `json:"values"`
	UnmatchedKeys []string       `json:"unmatchedKeys,omitempty"`
	Transport     string         `json:"transport"`
	SubmittedAt   time.Time      `json:"submittedAt"`
}
