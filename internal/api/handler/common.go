package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/bcnelson/sentinelguard/internal/domain"
	"github.com/bcnelson/sentinelguard/internal/validation"
	"github.com/go-chi/chi/v5"
)

var validate = validation.New()

// respondJSON writes a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError writes a JSON error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, &domain.StandardErrorResponse{
		Error: domain.StandardError{Code: code, Message: message},
	})
}

// respondValidationErrors writes a JSON response for failed request validation.
func respondValidationErrors(w http.ResponseWriter, errs validation.Errors) {
	stdErr := domain.StandardError{
		Code:    domain.ErrCodeValidationError,
		Message: errs.Error(),
		Details: map[string]any{"errors": errs},
	}
	if len(errs) > 0 {
		stdErr.Field = errs[0].Field
	}
	respondJSON(w, http.StatusBadRequest, &domain.StandardErrorResponse{Error: stdErr})
}

// handleError converts domain errors to HTTP errors. The message keeps the
// full diagnostic text.
func handleError(w http.ResponseWriter, err error) {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		respondValidationErrors(w, verrs)
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, domain.ErrCodeResourceNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		respondError(w, http.StatusUnauthorized, domain.ErrCodeUnauthorized, err.Error())
	case errors.Is(err, domain.ErrExecutionFailed):
		respondError(w, http.StatusBadGateway, domain.ErrCodeExecutionFailed, err.Error())
	case errors.Is(err, domain.ErrScriptError):
		respondError(w, http.StatusUnprocessableEntity, domain.ErrCodeScriptError, err.Error())
	case errors.Is(err, domain.ErrParse):
		respondError(w, http.StatusBadGateway, domain.ErrCodeParseError, err.Error())
	case errors.Is(err, domain.ErrStorage):
		respondError(w, http.StatusInternalServerError, domain.ErrCodeStorageError, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, domain.ErrCodeInternalError, err.Error())
	}
}

// decodeJSON decodes JSON from request body.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return domain.ErrInvalidInput
	}
	return nil
}

// decodeValid decodes the body into v and validates it, writing the error
// response itself. It reports whether the handler should continue.
func decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := decodeJSON(r, v); err != nil {
		respondError(w, http.StatusBadRequest, domain.ErrCodeInvalidInput, "invalid request body")
		return false
	}
	if err := validate.Struct(v); err != nil {
		handleError(w, err)
		return false
	}
	return true
}

// pathParam returns the unescaped URL parameter name.
func pathParam(r *http.Request, name string) (string, bool) {
	value, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil || value == "" {
		return "", false
	}
	return value, true
}
