package web

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"booking-finance/internal/app"
	"booking-finance/internal/core"
)

type errorResponse struct {
	Error     string            `json:"error"`
	Code      string            `json:"code"`
	RequestID string            `json:"request_id,omitempty"`
	Fields    []core.FieldError `json:"fields,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	writeErrorResponse(w, status, errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	})
}

// writeFieldErrors writes HTTP 422 with one entry per offending field.
func writeFieldErrors(w http.ResponseWriter, r *http.Request, fe core.FieldErrors) {
	noteInvalidFields(r, len(fe))
	writeErrorResponse(w, http.StatusUnprocessableEntity, errorResponse{
		Error:     "validation failed",
		Code:      "VALIDATION_FAILED",
		RequestID: requestIDFromContext(r.Context()),
		Fields:    fe,
	})
}

func writeErrorResponse(w http.ResponseWriter, status int, resp errorResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeServiceError maps an ApplicationService error to its HTTP status.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if fe, ok := core.AsFieldErrors(err); ok {
		writeFieldErrors(w, r, fe)
		return
	}

	switch {
	case errors.Is(err, core.ErrBookingNotFound), errors.Is(err, core.ErrCompanyNotFound):
		writeError(w, r, err.Error(), "NOT_FOUND", http.StatusNotFound)
	case errors.Is(err, core.ErrDuplicateBooking):
		writeError(w, r, err.Error(), "DUPLICATE", http.StatusConflict)
	case errors.Is(err, core.ErrInvalidPaymentMode),
		errors.Is(err, core.ErrInvalidPaymentStatus),
		errors.Is(err, core.ErrInvalidPaymentList),
		errors.Is(err, core.ErrInvalidDate),
		errors.Is(err, core.ErrUnknownField),
		errors.Is(err, core.ErrEntryIndexOutOfRange),
		errors.Is(err, core.ErrLastReceivedEntry),
		errors.Is(err, core.ErrFieldNotApplicable):
		writeError(w, r, err.Error(), "BAD_REQUEST", http.StatusBadRequest)
	case errors.Is(err, app.ErrAgentUnavailable):
		writeError(w, r, err.Error(), "AI_UNAVAILABLE", http.StatusServiceUnavailable)
	default:
		log.Printf("[%s] %s %s: %v", requestIDFromContext(r.Context()), r.Method, r.URL.Path, err)
		writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
	}
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeJSONStatus writes a JSON response with the given status.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
