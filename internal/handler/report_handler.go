package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mrmbilling/royalty-ledger/internal/middleware"
	"github.com/mrmbilling/royalty-ledger/internal/service"
	"github.com/rs/zerolog/log"
)

// ReportHandler serves the ledger reports and the outstanding digest
type ReportHandler struct {
	reportService *service.ReportService
	digestService *service.DigestService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService, digestService *service.DigestService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		digestService: digestService,
	}
}

// GSTInvoice handles GET /api/v1/reports/gst-invoice
// @Summary GST and invoice report
// @Tags reports
// @Produce json
// @Param financialYear query string false "Financial year start"
// @Success 200 {object} service.GSTInvoiceReport
// @Security BearerAuth
// @Router /reports/gst-invoice [get]
func (h *ReportHandler) GSTInvoice(c echo.Context) error {
	fy, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "build GST report")
	}
	report, err := h.reportService.GSTInvoice(c.Request().Context(), fy)
	if err != nil {
		return handleServiceError(c, err, "build GST report")
	}
	return c.JSON(http.StatusOK, report)
}

// ReceiptsTDS handles GET /api/v1/reports/receipts-tds
// @Summary Receipts and TDS report
// @Tags reports
// @Produce json
// @Param financialYear query string false "Financial year start"
// @Success 200 {object} service.ReceiptsTDSReport
// @Security BearerAuth
// @Router /reports/receipts-tds [get]
func (h *ReportHandler) ReceiptsTDS(c echo.Context) error {
	fy, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "build receipts report")
	}
	report, err := h.reportService.ReceiptsTDS(c.Request().Context(), fy)
	if err != nil {
		return handleServiceError(c, err, "build receipts report")
	}
	return c.JSON(http.StatusOK, report)
}

// Summary handles GET /api/v1/reports/summary
// @Summary Financial year summary
// @Tags reports
// @Produce json
// @Param financialYear query string false "Financial year start"
// @Success 200 {object} domain.LedgerSummary
// @Security BearerAuth
// @Router /reports/summary [get]
func (h *ReportHandler) Summary(c echo.Context) error {
	fy, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "build summary")
	}
	summary, err := h.reportService.Summary(c.Request().Context(), fy)
	if err != nil {
		return handleServiceError(c, err, "build summary")
	}
	return c.JSON(http.StatusOK, summary)
}

// Client handles GET /api/v1/reports/client/:clientId
// @Summary One client's financial year
// @Tags reports
// @Produce json
// @Param clientId path string true "Client ID"
// @Param financialYear query string false "Financial year start"
// @Success 200 {object} service.ClientReport
// @Security BearerAuth
// @Router /reports/client/{clientId} [get]
func (h *ReportHandler) Client(c echo.Context) error {
	fy, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "build client report")
	}
	report, err := h.reportService.Client(c.Request().Context(), c.Param("clientId"), fy)
	if err != nil {
		return handleServiceError(c, err, "build client report")
	}
	return c.JSON(http.StatusOK, report)
}

// Digest handles GET /api/v1/reports/digest
// @Summary Preview the outstanding digest
// @Tags reports
// @Produce json
// @Param financialYear query string false "Financial year start"
// @Success 200 {object} service.RenderedDigest
// @Security BearerAuth
// @Router /reports/digest [get]
func (h *ReportHandler) Digest(c echo.Context) error {
	fy, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "build digest")
	}
	rendered, err := h.digestService.Build(c.Request().Context(), fy)
	if err != nil {
		return handleServiceError(c, err, "build digest")
	}
	return c.JSON(http.StatusOK, rendered)
}

// SendDigest handles POST /api/v1/reports/digest/send
// @Summary Email the outstanding digest now
// @Tags reports
// @Produce json
// @Param financialYear query string false "Financial year start"
// @Success 200 {object} domain.OutstandingDigest
// @Failure 503 {object} ProblemDetails
// @Security BearerAuth
// @Router /reports/digest/send [post]
func (h *ReportHandler) SendDigest(c echo.Context) error {
	fy, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "send digest")
	}
	rendered, err := h.digestService.Send(c.Request().Context(), fy)
	if err != nil {
		return handleServiceError(c, err, "send digest")
	}
	log.Info().Str("actor", middleware.Actor(c)).Msg("Digest sent on demand")
	return c.JSON(http.StatusOK, rendered.Digest)
}
