package api

import (
	"encoding/json"
	"net/http"
)

const (
	msgSubmitted       = "Form configuration and data saved successfully"
	msgSubmitFailed    = "Failed to save form configuration and data"
	msgBodyTooLarge    = "Request body too large"
	msgUnexpectedError = "Unexpected error"
)

type submitResponse struct {
	Message      string `json:"message"`
	FormID       int64  `json:"formId"`
	SubmissionID int64  `json:"submissionId"`
}

type errorResponse struct {
	Message string   `json:"message"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type statusResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
	Error  string `json:"error,omitempty"`
	Code   string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message, code string, details []string) {
	writeJSON(w, status, errorResponse{Message: message, Error: code, Details: details})
}
