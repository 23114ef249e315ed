package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mrmbilling/royalty-ledger/internal/middleware"
	"github.com/mrmbilling/royalty-ledger/internal/service"
	"github.com/rs/zerolog/log"
)

// MaxImportSize bounds an uploaded workbook
const MaxImportSize = 10 << 20

// ImportHandler handles workbook uploads
type ImportHandler struct {
	importService *service.ImportService
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(importService *service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// ImportWorkbook handles POST /api/v1/imports
// @Summary Import clients and entries from an Excel workbook
// @Description Reads the Clients and Entries sheets. Failing rows are reported and skipped.
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Workbook (.xlsx)"
// @Param financialYear query string false "Financial year for rows without a year column"
// @Success 200 {object} service.ImportResult
// @Failure 400 {object} ProblemDetails
// @Security BearerAuth
// @Router /imports [post]
func (h *ImportHandler) ImportWorkbook(c echo.Context) error {
	fy, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "import workbook")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewValidationError(c, "No file provided", []ValidationError{
			{Field: "file", Message: "File is required"},
		})
	}
	if file.Size > MaxImportSize {
		return NewValidationError(c, "Validation failed", []ValidationError{
			{Field: "file", Message: "File too large. Maximum size is 10MB"},
		})
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	result, err := h.importService.Import(c.Request().Context(), src, fy)
	if err != nil {
		return handleServiceError(c, err, "import workbook")
	}

	log.Info().
		Str("filename", file.Filename).
		Int("saved", result.SavedCount).
		Int("failed", result.FailedCount).
		Str("actor", middleware.Actor(c)).
		Msg("Workbook uploaded")
	return c.JSON(http.StatusOK, result)
}
