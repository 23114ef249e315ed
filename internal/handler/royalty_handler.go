package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/mrmbilling/royalty-ledger/internal/middleware"
	"github.com/mrmbilling/royalty-ledger/internal/service"
	"github.com/mrmbilling/royalty-ledger/internal/util"
	"github.com/rs/zerolog/log"
)

// RoyaltyHandler handles monthly royalty entry requests
type RoyaltyHandler struct {
	royaltyService *service.RoyaltyService
}

// NewRoyaltyHandler creates a new RoyaltyHandler
func NewRoyaltyHandler(royaltyService *service.RoyaltyService) *RoyaltyHandler {
	return &RoyaltyHandler{royaltyService: royaltyService}
}

// SaveEntryRequest is the body of POST /royalty-entries.
// Omitted amounts are zero. Omitted commissionRate, gstRate and previousMonthOutstanding
// fall back to the client's rate, 18% and the carried balance. A zero gstRate or
// previousMonthOutstanding counts as omitted.
type SaveEntryRequest struct {
	ClientID      string `json:"clientId" validate:"required,max=50"`
	Month         string `json:"month" validate:"required"`
	FinancialYear *int   `json:"financialYear,omitempty" validate:"omitempty,gte=2000,lte=2100"`
	Status        string `json:"status,omitempty" validate:"omitempty,oneof=draft submitted"`
	RoyaltyType   string `json:"royaltyType,omitempty" validate:"max=100"`

	CommissionRate           *float64 `json:"commissionRate,omitempty" validate:"omitempty,gte=0,lte=100"`
	GSTRate                  *float64 `json:"gstRate,omitempty" validate:"omitempty,gte=0,lte=100"`
	PreviousMonthOutstanding *float64 `json:"previousMonthOutstanding,omitempty"`

	IPRSAmount          float64 `json:"iprsAmount"`
	PRSGBP              float64 `json:"prsGbp"`
	GBPToINRRate        float64 `json:"gbpToInrRate"`
	PRSAmount           float64 `json:"prsAmount"`
	SoundExchangeAmount float64 `json:"soundExchangeAmount"`
	ISAMRAAmount        float64 `json:"isamraAmount"`
	ASCAPAmount         float64 `json:"ascapAmount"`
	PPLAmount           float64 `json:"pplAmount"`

	CurrentMonthGSTBase        float64 `json:"currentMonthGstBase"`
	PreviousOutstandingGSTBase float64 `json:"previousOutstandingGstBase"`

	CurrentMonthReceipt  float64 `json:"currentMonthReceipt"`
	CurrentMonthTDS      float64 `json:"currentMonthTds"`
	PreviousMonthReceipt float64 `json:"previousMonthReceipt"`
	PreviousMonthTDS     float64 `json:"previousMonthTds"`
}

func (r SaveEntryRequest) inputs() domain.EntryInputs {
	return domain.EntryInputs{
		RoyaltyType:                r.RoyaltyType,
		IPRSAmount:                 r.IPRSAmount,
		PRSGBP:                     r.PRSGBP,
		GBPToINRRate:               r.GBPToINRRate,
		PRSAmount:                  r.PRSAmount,
		SoundExchangeAmount:        r.SoundExchangeAmount,
		ISAMRAAmount:               r.ISAMRAAmount,
		ASCAPAmount:                r.ASCAPAmount,
		PPLAmount:                  r.PPLAmount,
		CurrentMonthGSTBase:        r.CurrentMonthGSTBase,
		PreviousOutstandingGSTBase: r.PreviousOutstandingGSTBase,
		CurrentMonthReceipt:        r.CurrentMonthReceipt,
		CurrentMonthTDS:            r.CurrentMonthTDS,
		PreviousMonthReceipt:       r.PreviousMonthReceipt,
		PreviousMonthTDS:           r.PreviousMonthTDS,
	}
}

// SaveEntryResponse is returned by a save
type SaveEntryResponse struct {
	Entry           *domain.RoyaltyEntry   `json:"entry"`
	CascadedEntries []*domain.RoyaltyEntry `json:"cascadedEntries"`
	CascadedCount   int                    `json:"cascadedCount"`
	Warnings        []string               `json:"warnings"`
}

// CascadeIncompleteProblem is returned when the entry was saved but a later month
// could not be updated. The listed months were already carried forward.
type CascadeIncompleteProblem struct {
	ProblemDetails
	Entry           *domain.RoyaltyEntry   `json:"entry"`
	CascadedEntries []*domain.RoyaltyEntry `json:"cascadedEntries"`
	CascadedCount   int                    `json:"cascadedCount"`
}

// UpdateStatusRequest is the body of PATCH .../status
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft submitted"`
}

// PreviousOutstandingResponse carries the balance a month opens with
type PreviousOutstandingResponse struct {
	ClientID                 string       `json:"clientId"`
	Month                    domain.Month `json:"month"`
	PreviousMonthOutstanding float64      `json:"previousMonthOutstanding"`
}

// PreviewRequest runs the engine on unsaved inputs
type PreviewRequest struct {
	domain.EntryInputs
}

// LinkPRSRequest names the edited PRS field and the current values
type LinkPRSRequest struct {
	Edited       string  `json:"edited" validate:"required,oneof=prsGbp gbpToInrRate prsAmount"`
	PRSGBP       float64 `json:"prsGbp" validate:"gte=0"`
	GBPToINRRate float64 `json:"gbpToInrRate" validate:"gte=0"`
	PRSAmount    float64 `json:"prsAmount" validate:"gte=0"`
}

// financialYearParam reads the optional financialYear query parameter
func financialYearParam(c echo.Context) (*domain.FinancialYear, error) {
	return util.ParseFinancialYear(c.QueryParam("financialYear"))
}

// SaveEntry handles POST /api/v1/royalty-entries
// @Summary Create or update a monthly entry
// @Description Computes every derived field and carries the closing balance into later months
// @Tags royalty-entries
// @Accept json
// @Produce json
// @Param request body SaveEntryRequest true "Entry inputs"
// @Success 201 {object} SaveEntryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Failure 500 {object} CascadeIncompleteProblem
// @Security BearerAuth
// @Router /royalty-entries [post]
func (h *RoyaltyHandler) SaveEntry(c echo.Context) error {
	var req SaveEntryRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	fy, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "save royalty entry")
	}
	if req.FinancialYear != nil {
		year := domain.NewFinancialYear(*req.FinancialYear)
		fy = &year
	}

	result, err := h.royaltyService.Save(c.Request().Context(), service.SaveEntryInput{
		ClientID:                 req.ClientID,
		Month:                    domain.Month(req.Month),
		FinancialYear:            fy,
		Status:                   domain.EntryStatus(req.Status),
		Inputs:                   req.inputs(),
		CommissionRate:           req.CommissionRate,
		GSTRate:                  req.GSTRate,
		PreviousMonthOutstanding: req.PreviousMonthOutstanding,
	})
	if err != nil && result != nil {
		log.Error().Err(err).
			Str("client_id", req.ClientID).
			Int("cascaded", len(result.Cascaded)).
			Msg("Entry saved but cascade incomplete")
		return c.JSON(http.StatusInternalServerError, CascadeIncompleteProblem{
			ProblemDetails: ProblemDetails{
				Type:     ErrorTypeCascade,
				Title:    "Cascade Incomplete",
				Status:   http.StatusInternalServerError,
				Detail:   "Entry saved but later months were not all updated; save again or recalculate the client",
				Instance: c.Request().URL.Path,
			},
			Entry:           result.Entry,
			CascadedEntries: result.Cascaded,
			CascadedCount:   len(result.Cascaded),
		})
	}
	if err != nil {
		return handleServiceError(c, err, "save royalty entry")
	}

	log.Info().
		Str("client_id", result.Entry.ClientID).
		Str("month", string(result.Entry.Month)).
		Int("year", result.Entry.Year).
		Str("actor", middleware.Actor(c)).
		Msg("Royalty entry saved via API")

	return c.JSON(http.StatusCreated, SaveEntryResponse{
		Entry:           result.Entry,
		CascadedEntries: result.Cascaded,
		CascadedCount:   len(result.Cascaded),
		Warnings:        result.Warnings,
	})
}

// ListEntries handles GET /api/v1/royalty-entries
// @Summary List monthly entries
// @Tags royalty-entries
// @Produce json
// @Param clientId query string false "Client ID"
// @Param month query string false "Month (apr..mar)"
// @Param financialYear query string false "Financial year start, e.g. 2025"
// @Success 200 {array} domain.RoyaltyEntry
// @Failure 400 {object} ProblemDetails
// @Security BearerAuth
// @Router /royalty-entries [get]
func (h *RoyaltyHandler) ListEntries(c echo.Context) error {
	fy, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "list royalty entries")
	}

	entries, err := h.royaltyService.List(c.Request().Context(), domain.EntryFilter{
		ClientID:      c.QueryParam("clientId"),
		Month:         domain.Month(c.QueryParam("month")),
		FinancialYear: fy,
	})
	if err != nil {
		return handleServiceError(c, err, "list royalty entries")
	}
	return c.JSON(http.StatusOK, entries)
}

// GetEntry handles GET /api/v1/royalty-entries/:clientId/:month
// @Summary Get one monthly entry
// @Tags royalty-entries
// @Produce json
// @Param clientId path string true "Client ID"
// @Param month path string true "Month (apr..mar)"
// @Param financialYear query string false "Financial year start"
// @Success 200 {object} domain.RoyaltyEntry
// @Failure 404 {object} ProblemDetails
// @Security BearerAuth
// @Router /royalty-entries/{clientId}/{month} [get]
func (h *RoyaltyHandler) GetEntry(c echo.Context) error {
	fy, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "get royalty entry")
	}

	entry, err := h.royaltyService.Get(c.Request().Context(), c.Param("clientId"), domain.Month(c.Param("month")), fy)
	if err != nil {
		return handleServiceError(c, err, "get royalty entry")
	}
	return c.JSON(http.StatusOK, entry)
}

// DeleteEntry handles DELETE /api/v1/royalty-entries/:clientId/:month
// @Summary Delete one monthly entry
// @Tags royalty-entries
// @Param clientId path string true "Client ID"
// @Param month path string true "Month (apr..mar)"
// @Param financialYear query string false "Financial year start"
// @Success 204
// @Failure 404 {object} ProblemDetails
// @Security BearerAuth
// @Router /royalty-entries/{clientId}/{month} [delete]
func (h *RoyaltyHandler) DeleteEntry(c echo.Context) error {
	fy, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "delete royalty entry")
	}

	clientID := c.Param("clientId")
	if err := h.royaltyService.Delete(c.Request().Context(), clientID, domain.Month(c.Param("month")), fy); err != nil {
		return handleServiceError(c, err, "delete royalty entry")
	}

	log.Info().Str("client_id", clientID).Str("month", c.Param("month")).Str("actor", middleware.Actor(c)).Msg("Royalty entry deleted")
	return c.NoContent(http.StatusNoContent)
}

// UpdateStatus handles PATCH /api/v1/royalty-entries/:clientId/:month/status
// @Summary Move an entry between draft and submitted
// @Tags royalty-entries
// @Accept json
// @Produce json
// @Param clientId path string true "Client ID"
// @Param month path string true "Month (apr..mar)"
// @Param request body UpdateStatusRequest true "New status"
// @Success 200 {object} domain.RoyaltyEntry
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Security BearerAuth
// @Router /royalty-entries/{clientId}/{month}/status [patch]
func (h *RoyaltyHandler) UpdateStatus(c echo.Context) error {
	var req UpdateStatusRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	fy, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "update entry status")
	}

	entry, err := h.royaltyService.UpdateStatus(c.Request().Context(), c.Param("clientId"), domain.Month(c.Param("month")), fy, domain.EntryStatus(req.Status))
	if err != nil {
		return handleServiceError(c, err, "update entry status")
	}
	return c.JSON(http.StatusOK, entry)
}

// GetPreviousOutstanding handles GET /api/v1/royalty-entries/previous-outstanding/:clientId/:month
// @Summary Balance carried into a month
// @Description The previous month's totalOutstanding, or 0 for April and for a missing previous month
// @Tags royalty-entries
// @Produce json
// @Param clientId path string true "Client ID"
// @Param month path string true "Month (apr..mar)"
// @Param financialYear query string false "Financial year start"
// @Success 200 {object} PreviousOutstandingResponse
// @Failure 400 {object} ProblemDetails
// @Security BearerAuth
// @Router /royalty-entries/previous-outstanding/{clientId}/{month} [get]
func (h *RoyaltyHandler) GetPreviousOutstanding(c echo.Context) error {
	fy, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "get previous outstanding")
	}

	clientID := c.Param("clientId")
	month := domain.Month(c.Param("month"))
	value, err := h.royaltyService.PreviousOutstanding(c.Request().Context(), clientID, month, fy)
	if err != nil {
		return handleServiceError(c, err, "get previous outstanding")
	}

	parsed, _ := domain.ParseMonth(string(month))
	return c.JSON(http.StatusOK, PreviousOutstandingResponse{
		ClientID:                 clientID,
		Month:                    parsed,
		PreviousMonthOutstanding: value,
	})
}

// RecalculateClient handles POST /api/v1/royalty-entries/recalculate/:clientId
// @Summary Recompute a client's year and repair the carried balances
// @Tags royalty-entries
// @Produce json
// @Param clientId path string true "Client ID"
// @Param financialYear query string false "Financial year start"
// @Success 200 {object} service.RecalculateResult
// @Failure 404 {object} ProblemDetails
// @Security BearerAuth
// @Router /royalty-entries/recalculate/{clientId} [post]
func (h *RoyaltyHandler) RecalculateClient(c echo.Context) error {
	fy, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "recalculate client")
	}

	result, err := h.royaltyService.RecalculateClient(c.Request().Context(), c.Param("clientId"), fy)
	if err != nil {
		return handleServiceError(c, err, "recalculate client")
	}
	return c.JSON(http.StatusOK, result)
}

// RecalculateAll handles POST /api/v1/royalty-entries/recalculate
// @Summary Recompute every client's year
// @Tags royalty-entries
// @Produce json
// @Param financialYear query string false "Financial year start"
// @Success 200 {array} service.RecalculateResult
// @Security BearerAuth
// @Router /royalty-entries/recalculate [post]
func (h *RoyaltyHandler) RecalculateAll(c echo.Context) error {
	fy, err := financialYearParam(c)
	if err != nil {
		return handleServiceError(c, err, "recalculate ledger")
	}

	results, err := h.royaltyService.RecalculateAll(c.Request().Context(), fy)
	if err != nil {
		return handleServiceError(c, err, "recalculate ledger")
	}
	log.Info().Int("clients", len(results)).Str("actor", middleware.Actor(c)).Msg("Ledger recalculated")
	return c.JSON(http.StatusOK, results)
}

// Preview handles POST /api/v1/royalty-entries/preview
// @Summary Compute an entry without saving it
// @Tags royalty-entries
// @Accept json
// @Produce json
// @Param request body domain.EntryInputs true "Entry inputs"
// @Success 200 {object} domain.EntryComputed
// @Failure 400 {object} ProblemDetails
// @Security BearerAuth
// @Router /royalty-entries/preview [post]
func (h *RoyaltyHandler) Preview(c echo.Context) error {
	var req PreviewRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	return c.JSON(http.StatusOK, h.royaltyService.Preview(req.EntryInputs))
}

// LinkPRS handles POST /api/v1/royalty-entries/link-prs
// @Summary Derive the third linked PRS value
// @Tags royalty-entries
// @Accept json
// @Produce json
// @Param request body LinkPRSRequest true "Edited field and values"
// @Success 200 {object} service.PRSValues
// @Failure 400 {object} ProblemDetails
// @Security BearerAuth
// @Router /royalty-entries/link-prs [post]
func (h *RoyaltyHandler) LinkPRS(c echo.Context) error {
	var req LinkPRSRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}
	return c.JSON(http.StatusOK, service.LinkPRS(service.PRSField(req.Edited), service.PRSValues{
		GBP:    req.PRSGBP,
		Rate:   req.GBPToINRRate,
		Amount: req.PRSAmount,
	}))
}
