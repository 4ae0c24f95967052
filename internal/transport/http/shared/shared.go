// Package shared holds the response helpers every handler uses so error
// bodies and code-to-status mapping stay consistent across domains.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "aidchain/pkg/domain-errors"
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteJSON writes a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps a domain error code to an HTTP status and writes the
// stable code in the body so UIs can translate it without parsing messages.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)

	message := ""
	var de *dErrors.Error
	if errors.As(err, &de) {
		message = de.Message
	}

	WriteJSON(w, statusFor(code), errorBody{Error: string(code), Message: message})
}

func statusFor(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeUnauthorized:
		return http.StatusForbidden
	case dErrors.CodeUnknownUnit, dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeBelowMinimum, dErrors.CodeRoleMismatch:
		return http.StatusUnprocessableEntity
	case dErrors.CodeAlreadyInTransit,
		dErrors.CodeMustBeInTransitFirst,
		dErrors.CodeMustBeDeliveredFirst,
		dErrors.CodeAlreadyClaimed:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
