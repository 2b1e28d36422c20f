package api

import (
	"encoding/json"
	"net/http"
)

// Error is the body of every non-2xx response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`

	// Errors maps column name to message on validation failures.
	Errors map[string]string `json:"errors,omitempty"`
}

// Error codes returned in the code field.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
	ErrCodeUnavailable  = "storage_unavailable"
)

var codeByStatus = map[int]string{
	http.StatusBadRequest:          ErrCodeBadRequest,
	http.StatusUnauthorized:        ErrCodeUnauthorized,
	http.StatusNotFound:            ErrCodeNotFound,
	http.StatusUnprocessableEntity: ErrCodeValidation,
	http.StatusServiceUnavailable:  ErrCodeUnavailable,
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	//nolint:errcheck // the client may have gone away
	json.NewEncoder(w).Encode(v)
}

// writeError writes an Error whose code follows from status.
func writeError(w http.ResponseWriter, status int, message string) {
	code, ok := codeByStatus[status]
	if !ok {
		code = ErrCodeInternal
	}
	writeJSON(w, status, Error{Status: status, Code: code, Message: message})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, message)
}

func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, message)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, message)
}

func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, message)
}

// writeValidationError writes a 422 carrying the per-field messages.
func writeValidationError(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, Error{
		Status:  http.StatusUnprocessableEntity,
		Code:    ErrCodeValidation,
		Message: "one or more fields are invalid",
		Errors:  fields,
	})
}

// writeStorageError writes a 503. The cause is logged by the caller and
// never reaches the client.
func writeStorageError(w http.ResponseWriter) {
	writeError(w, http.StatusServiceUnavailable, "storage is unavailable")
}
