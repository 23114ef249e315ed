package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://royalty-ledger.app/errors/validation"
	ErrorTypeNotFound     = "https://royalty-ledger.app/errors/not-found"
	ErrorTypeUnauthorized = "https://royalty-ledger.app/errors/unauthorized"
	ErrorTypeConflict     = "https://royalty-ledger.app/errors/conflict"
	ErrorTypeUnavailable  = "https://royalty-ledger.app/errors/unavailable"
	ErrorTypeInternal     = "https://royalty-ledger.app/errors/internal"
	ErrorTypeCascade      = "https://royalty-ledger.app/errors/cascade-incomplete"
)

func problem(c echo.Context, status int, typ, title, detail string, errs []ValidationError) error {
	return c.JSON(status, ProblemDetails{
		Type:     typ,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   errs,
	})
}

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return problem(c, http.StatusBadRequest, ErrorTypeValidation, "Validation Error", detail, errors)
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return problem(c, http.StatusNotFound, ErrorTypeNotFound, "Not Found", detail, nil)
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnauthorized, ErrorTypeUnauthorized, "Unauthorized", detail, nil)
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return problem(c, http.StatusConflict, ErrorTypeConflict, "Conflict", detail, nil)
}

// NewServiceUnavailableError creates a response for features that are not configured
func NewServiceUnavailableError(c echo.Context, detail string) error {
	return problem(c, http.StatusServiceUnavailable, ErrorTypeUnavailable, "Service Unavailable", detail, nil)
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return problem(c, http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error", detail, nil)
}

// fieldErrors maps validation sentinels to the request field they concern
var fieldErrors = []struct {
	err   error
	field string
}{
	{domain.ErrClientIDRequired, "clientId"},
	{domain.ErrMonthRequired, "month"},
	{domain.ErrInvalidMonth, "month"},
	{domain.ErrInvalidFinancialYear, "financialYear"},
	{domain.ErrInvalidStatus, "status"},
	{domain.ErrInvalidRate, "rate"},
	{domain.ErrInvalidFee, "fee"},
	{domain.ErrNameRequired, "name"},
	{domain.ErrNameTooLong, "name"},
	{domain.ErrInvalidSettingValue, "value"},
	{domain.ErrNegativeAmount, "amount"},
	{domain.ErrInvalidWorkbook, "file"},
	{domain.ErrInvalidInput, ""},
}

var fieldNamePattern = regexp.MustCompile(`^[a-z][A-Za-z0-9]*$`)

// fieldOf prefers the field name a service appended as "<sentinel>: <field>"
func fieldOf(err error, fallback string) string {
	msg := err.Error()
	if i := strings.LastIndex(msg, ": "); i >= 0 && fieldNamePattern.MatchString(msg[i+2:]) {
		return msg[i+2:]
	}
	return fallback
}

// handleServiceError turns a service error into a problem response.
// Unexpected errors are logged and reported as "Failed to <action>".
func handleServiceError(c echo.Context, err error, action string) error {
	for _, fe := range fieldErrors {
		if errors.Is(err, fe.err) {
			var errs []ValidationError
			if field := fieldOf(err, fe.field); field != "" {
				errs = []ValidationError{{Field: field, Message: err.Error()}}
			}
			return NewValidationError(c, "Validation failed", errs)
		}
	}

	switch {
	case errors.Is(err, domain.ErrClientNotFound),
		errors.Is(err, domain.ErrEntryNotFound),
		errors.Is(err, domain.ErrSettingNotFound),
		errors.Is(err, domain.ErrNoDigestEntries),
		errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, err.Error())
	case errors.Is(err, domain.ErrClientAlreadyExists),
		errors.Is(err, domain.ErrClientBusy):
		return NewConflictError(c, err.Error())
	case errors.Is(err, domain.ErrStorageDisabled),
		errors.Is(err, domain.ErrMailerDisabled):
		return NewServiceUnavailableError(c, err.Error())
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Failed to " + action)
	return NewInternalError(c, "Failed to "+action)
}
