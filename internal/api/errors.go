package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/MohammadRstm/BookApp/internal/errors"
	"github.com/MohammadRstm/BookApp/internal/store"
)

// genericServerError is the only message clients see for 5xx responses.
const genericServerError = "Internal server error"

// APIError implements huma.StatusError for errors produced by huma itself
// (schema validation, malformed bodies) and for anything a handler returns
// that is not already a domain error.
type APIError struct { //nolint:revive // API prefix is intentional for clarity
	status  int
	Code    string `json:"code" doc:"Machine-readable error code"`
	Message string `json:"error" doc:"Human-readable error message"`
	Details any    `json:"details,omitempty" doc:"Additional error details"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *APIError) GetStatus() int {
	return e.status
}

// ContentType returns the content type for the error response.
func (e *APIError) ContentType(_ string) string {
	return "application/json"
}

// RegisterErrorHandler configures huma to report errors through domain
// codes. Call this after creating the huma.API but before serving requests.
func RegisterErrorHandler(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	huma.NewError = func(status int, message string, errs ...error) huma.StatusError {
		return newAPIError(status, message, errs, logger)
	}
}

func newAPIError(status int, message string, errs []error, logger *slog.Logger) *APIError {
	var details map[string]string

	for _, err := range errs {
		if err == nil {
			continue
		}

		var domainErr *domainerrors.Error
		if errors.As(err, &domainErr) {
			return &APIError{
				status:  domainErr.HTTPStatus(),
				Code:    string(domainErr.Code),
				Message: domainErr.Message,
				Details: domainErr.Details,
			}
		}

		var storeErr *store.Error
		if errors.As(err, &storeErr) && storeErr.HTTPCode() < http.StatusInternalServerError {
			return &APIError{
				status:  storeErr.HTTPCode(),
				Code:    string(domainerrors.CodeForStatus(storeErr.HTTPCode())),
				Message: storeErr.Message,
			}
		}

		var detailer huma.ErrorDetailer
		if errors.As(err, &detailer) {
			d := detailer.ErrorDetail()
			if details == nil {
				details = make(map[string]string)
			}
			details[d.Location] = d.Message
		}
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", "status", status, "message", message, "error", errors.Join(errs...))
		return &APIError{
			status:  http.StatusInternalServerError,
			Code:    string(domainerrors.CodeInternal),
			Message: genericServerError,
		}
	}

	// Schema validation failures surface as 400 like the service validator's.
	if status == http.StatusUnprocessableEntity {
		status = http.StatusBadRequest
	}

	apiErr := &APIError{
		status:  status,
		Code:    string(domainerrors.CodeForStatus(status)),
		Message: message,
	}
	if details != nil {
		apiErr.Details = details
	}
	return apiErr
}
