package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/mrmbilling/royalty-ledger/internal/middleware"
	"github.com/mrmbilling/royalty-ledger/internal/service"
	"github.com/rs/zerolog/log"
)

// SettingsHandler handles ledger settings requests
type SettingsHandler struct {
	settingsService *service.SettingsService
}

// NewSettingsHandler creates a new SettingsHandler
func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// SetSettingRequest is the body of PUT /settings/:key
type SetSettingRequest struct {
	Value       json.RawMessage `json:"value" validate:"required" swaggertype:"object"`
	Description string          `json:"description,omitempty" validate:"max=500"`
}

// FinancialYearRequest is the body of PUT /settings/financial-year
type FinancialYearRequest struct {
	StartYear int `json:"startYear" validate:"required,gte=2000,lte=2100"`
}

// RateRequest is the body of the exchange-rate endpoints
type RateRequest struct {
	Rate float64 `json:"rate" validate:"required,gt=0"`
}

// ListSettings handles GET /api/v1/settings
// @Summary List settings
// @Tags settings
// @Produce json
// @Success 200 {array} domain.Setting
// @Security BearerAuth
// @Router /settings [get]
func (h *SettingsHandler) ListSettings(c echo.Context) error {
	settings, err := h.settingsService.List(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err, "list settings")
	}
	return c.JSON(http.StatusOK, settings)
}

// GetSetting handles GET /api/v1/settings/:key
// @Summary Get a setting
// @Tags settings
// @Produce json
// @Param key path string true "Setting key"
// @Success 200 {object} domain.Setting
// @Failure 404 {object} ProblemDetails
// @Security BearerAuth
// @Router /settings/{key} [get]
func (h *SettingsHandler) GetSetting(c echo.Context) error {
	setting, err := h.settingsService.Get(c.Request().Context(), c.Param("key"))
	if err != nil {
		return handleServiceError(c, err, "get setting")
	}
	return c.JSON(http.StatusOK, setting)
}

// SetSetting handles PUT /api/v1/settings/:key
// @Summary Store a setting
// @Tags settings
// @Accept json
// @Produce json
// @Param key path string true "Setting key"
// @Param request body SetSettingRequest true "Value"
// @Success 200 {object} domain.Setting
// @Failure 400 {object} ProblemDetails
// @Security BearerAuth
// @Router /settings/{key} [put]
func (h *SettingsHandler) SetSetting(c echo.Context) error {
	var req SetSettingRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	setting, err := h.settingsService.Set(c.Request().Context(), c.Param("key"), req.Value, req.Description)
	if err != nil {
		return handleServiceError(c, err, "update setting")
	}
	log.Info().Str("key", setting.Key).Str("actor", middleware.Actor(c)).Msg("Setting changed via API")
	return c.JSON(http.StatusOK, setting)
}

// Initialize handles POST /api/v1/settings/initialize
// @Summary Store every missing default setting
// @Tags settings
// @Produce json
// @Success 200 {array} domain.Setting
// @Security BearerAuth
// @Router /settings/initialize [post]
func (h *SettingsHandler) Initialize(c echo.Context) error {
	settings, err := h.settingsService.Initialize(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err, "initialize settings")
	}
	return c.JSON(http.StatusOK, settings)
}

// SetFinancialYear handles PUT /api/v1/settings/financial-year
// @Summary Switch the current financial year
// @Tags settings
// @Accept json
// @Produce json
// @Param request body FinancialYearRequest true "Start year"
// @Success 200 {object} domain.FinancialYear
// @Failure 400 {object} ProblemDetails
// @Security BearerAuth
// @Router /settings/financial-year [put]
func (h *SettingsHandler) SetFinancialYear(c echo.Context) error {
	var req FinancialYearRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	fy, err := h.settingsService.SetFinancialYear(c.Request().Context(), req.StartYear)
	if err != nil {
		return handleServiceError(c, err, "update financial year")
	}
	return c.JSON(http.StatusOK, fy)
}

// SetExchangeRate handles PUT /api/v1/settings/exchange-rate
// @Summary Set the GBP to INR rate
// @Tags settings
// @Accept json
// @Produce json
// @Param request body RateRequest true "Rate"
// @Success 200 {object} domain.Setting
// @Failure 400 {object} ProblemDetails
// @Security BearerAuth
// @Router /settings/exchange-rate [put]
func (h *SettingsHandler) SetExchangeRate(c echo.Context) error {
	return h.setRate(c, domain.SettingGBPToINRRate)
}

// SetUSDExchangeRate handles PUT /api/v1/settings/usd-exchange-rate
// @Summary Set the USD to INR rate
// @Tags settings
// @Accept json
// @Produce json
// @Param request body RateRequest true "Rate"
// @Success 200 {object} domain.Setting
// @Failure 400 {object} ProblemDetails
// @Security BearerAuth
// @Router /settings/usd-exchange-rate [put]
func (h *SettingsHandler) SetUSDExchangeRate(c echo.Context) error {
	return h.setRate(c, domain.SettingUSDToINRRate)
}

func (h *SettingsHandler) setRate(c echo.Context, key string) error {
	var req RateRequest
	if ok, err := bindAndValidate(c, &req); !ok {
		return err
	}

	setting, err := h.settingsService.SetRate(c.Request().Context(), key, req.Rate)
	if err != nil {
		return handleServiceError(c, err, "update "+key)
	}
	return c.JSON(http.StatusOK, setting)
}
