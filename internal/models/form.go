// internal/models/form.go
package models

import "time"

// FormConfiguration is a named form definition.
type FormConfiguration struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// FormField is one typed, labelled field of a FormConfiguration.
type FormField struct {
	ID        int64  `json:"id"`
	FormID    int64  `json:"formId"`
	FieldType string `json:"fieldType"`
	Label     string `json:"label"`
	Order     int    `json:"order"`
}

// FormSubmission is one filled-in response to a FormConfiguration.
type FormSubmission struct {
	ID          int64     `json:"id"`
	FormID      int64     `json:"formId"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// SubmissionValue is the stored string form of one submitted value.
type SubmissionValue struct {
	SubmissionID int64  `json:"submissionId"`
	FieldID      int64  `json:"fieldId"`
	Value        string `json:"value"`
}
