package domain

import "errors"

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAlreadyExists       = errors.New("resource already exists")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrForbidden           = errors.New("forbidden")
	ErrInternalError       = errors.New("internal error")
	ErrNameRequired        = errors.New("name is required")
	ErrNameTooLong         = errors.New("name exceeds maximum length")
	ErrClientBusy          = errors.New("another save is in progress for this client")
	ErrSettingNotFound     = errors.New("setting not found")
	ErrInvalidSettingValue = errors.New("invalid setting value")
	ErrStorageDisabled     = errors.New("export storage is not configured")
	ErrMailerDisabled      = errors.New("mailer is not configured")
	ErrNoDigestEntries     = errors.New("no entries for financial year")
	ErrInvalidWorkbook     = errors.New("invalid workbook")
)

// Royalty entry errors
var (
	ErrEntryNotFound        = errors.New("royalty entry not found")
	ErrClientIDRequired     = errors.New("client id is required")
	ErrMonthRequired        = errors.New("month is required")
	ErrInvalidMonth         = errors.New("month must be one of apr..mar")
	ErrInvalidFinancialYear = errors.New("invalid financial year")
	ErrNegativeAmount       = errors.New("amount must not be negative")
	ErrInvalidRate          = errors.New("rate must be between 0 and 100")
	ErrInvalidStatus        = errors.New("status must be draft or submitted")
)

// Client errors
var (
	ErrClientNotFound      = errors.New("client not found")
	ErrClientAlreadyExists = errors.New("client id already exists")
	ErrInvalidFee          = errors.New("fee must be between 0 and 1")
)

// Validation constants
const (
	MaxClientNameLength  = 255
	MaxRoyaltyTypeLength = 100
)
