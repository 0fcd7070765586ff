// internal/workers/forms/submit-form/models.go
package submitform

// Input variables are the submission payload itself: {fields, formData}.
// Other process variables are ignored.

type Output struct {
	FormID        int64    `json:"formId"`
	SubmissionID  int64    `json:"submissionId"`
	UnmatchedKeys []string `json:"unmatchedKeys"`
}
