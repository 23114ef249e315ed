package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mrmbilling/royalty-ledger/internal/middleware"
	"github.com/mrmbilling/royalty-ledger/internal/service"
	"github.com/rs/zerolog/log"
)

// ExportHandler serves ledger downloads
type ExportHandler struct {
	exportService *service.ExportService
}

// NewExportHandler creates a new ExportHandler
func NewExportHandler(exportService *service.ExportService) *ExportHandler {
	return &ExportHandler{exportService: exportService}
}

// ExportCSV handles GET /api/v1/exports/csv
// @Summary Download a financial year as CSV
// @Tags export
// @Produce text/csv
// @Param financialYear query string false "Financial year start"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /exports/csv [get]
func (h *ExportHandler) ExportCSV(c echo.Context) error {
	return h.download(c, "csv", "text/csv; charset=utf-8")
}

// ExportXLSX handles GET /api/v1/exports/xlsx
// @Summary Download a financial year as an Excel workbook
// @Tags export
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param financialYear query string false "Financial year start"
// @Success 200 {file} file
// @Security BearerAuth
// @Router /exports/xlsx [get]
func (h *ExportHandler) ExportXLSX(c echo.Context) error {
	return h.download(c, "xlsx", service.XLSXContentType)
}

// download renders the whole file before any header is written
func (h *ExportHandler) download(c echo.Context, ext, contentType string) error {
	raw, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "export ledger")
	}
	ctx := c.Request().Context()
	fy, err := h.exportService.ResolveFinancialYear(ctx, raw)
	if err != nil {
		return handleServiceError(c, err, "export ledger")
	}

	var buf bytes.Buffer
	if ext == "csv" {
		err = h.exportService.WriteCSV(ctx, &buf, fy)
	} else {
		err = h.exportService.WriteXLSX(ctx, &buf, fy)
	}
	if err != nil {
		return handleServiceError(c, err, "export ledger")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", h.exportService.Filename(fy, ext)))
	return c.Blob(http.StatusOK, contentType, buf.Bytes())
}

// Archive handles POST /api/v1/exports/archive
// @Summary Archive the workbook and return a download link
// @Tags export
// @Produce json
// @Param financialYear query string false "Financial year start"
// @Success 201 {object} service.ArchiveResult
// @Failure 503 {object} ProblemDetails
// @Security BearerAuth
// @Router /exports/archive [post]
func (h *ExportHandler) Archive(c echo.Context) error {
	raw, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "archive ledger")
	}
	ctx := c.Request().Context()
	fy, err := h.exportService.ResolveFinancialYear(ctx, raw)
	if err != nil {
		return handleServiceError(c, err, "archive ledger")
	}

	result, err := h.exportService.Archive(ctx, fy)
	if err != nil {
		return handleServiceError(c, err, "archive ledger")
	}

	log.Info().Str("key", result.Key).Str("actor", middleware.Actor(c)).Msg("Ledger archived via API")
	return c.JSON(http.StatusCreated, result)
}
