package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/mrmbilling/royalty-ledger/internal/service"
	"github.com/mrmbilling/royalty-ledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettingsHandlerFixture() (*echo.Echo, *SettingsHandler, *testutil.MockSettingsRepository) {
	repo := testutil.NewMockSettingsRepository()
	return echo.New(), NewSettingsHandler(service.NewSettingsService(repo)), repo
}

func TestGetSetting_CreatesKnownDefault(t *testing.T) {
	e, h, repo := newSettingsHandlerFixture()

	c, rec := newJSONContext(e, http.MethodGet, "/", "")
	c.SetParamNames("key")
	c.SetParamValues(domain.SettingGBPToINRRate)
	require.NoError(t, h.GetSetting(c))

	require.Equal(t, http.StatusOK, rec.Code)
	var setting domain.Setting
	decodeJSON(t, rec, &setting)
	assert.JSONEq(t, "110.5", string(setting.Value))
	assert.Contains(t, repo.Settings, domain.SettingGBPToINRRate)
}

func TestGetSetting_UnknownKey(t *testing.T) {
	e, h, _ := newSettingsHandlerFixture()

	c, rec := newJSONContext(e, http.MethodGet, "/", "")
	c.SetParamNames("key")
	c.SetParamValues("nope")
	require.NoError(t, h.GetSetting(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInitializeAndList(t *testing.T) {
	e, h, _ := newSettingsHandlerFixture()

	c, rec := newJSONContext(e, http.MethodPost, "/api/v1/settings/initialize", "")
	require.NoError(t, h.Initialize(c))
	require.Equal(t, http.StatusOK, rec.Code)

	c, rec = newJSONContext(e, http.MethodGet, "/api/v1/settings", "")
	require.NoError(t, h.ListSettings(c))

	var settings []domain.Setting
	decodeJSON(t, rec, &settings)
	keys := make([]string, len(settings))
	for i, s := range settings {
		keys[i] = s.Key
	}
	assert.Equal(t, []string{
		domain.SettingFinancialYear,
		domain.SettingGBPToINRRate,
		domain.SettingGSTRate,
		domain.SettingUSDToINRRate,
	}, keys)
}

func TestSetSetting(t *testing.T) {
	e, h, _ := newSettingsHandlerFixture()

	c, rec := newJSONContext(e, http.MethodPut, "/", `{"value": {"theme": "dark"}, "description": "UI preferences"}`)
	c.SetParamNames("key")
	c.SetParamValues("ui")
	require.NoError(t, h.SetSetting(c))

	require.Equal(t, http.StatusOK, rec.Code)
	var setting domain.Setting
	decodeJSON(t, rec, &setting)
	assert.JSONEq(t, `{"theme": "dark"}`, string(setting.Value))
	assert.Equal(t, "UI preferences", setting.Description)
}

func TestSetSetting_InvalidRate(t *testing.T) {
	e, h, _ := newSettingsHandlerFixture()

	c, rec := newJSONContext(e, http.MethodPut, "/", `{"value": -4}`)
	c.SetParamNames("key")
	c.SetParamValues(domain.SettingUSDToINRRate)
	require.NoError(t, h.SetSetting(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	p := decodeProblem(t, rec)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "value", p.Errors[0].Field)
}

func TestSetFinancialYear(t *testing.T) {
	e, h, repo := newSettingsHandlerFixture()

	c, rec := newJSONContext(e, http.MethodPut, "/api/v1/settings/financial-year", `{"startYear": 2026}`)
	require.NoError(t, h.SetFinancialYear(c))

	require.Equal(t, http.StatusOK, rec.Code)
	var fy domain.FinancialYear
	decodeJSON(t, rec, &fy)
	assert.Equal(t, domain.NewFinancialYear(2026), fy)

	var stored domain.FinancialYear
	require.NoError(t, json.Unmarshal(repo.Settings[domain.SettingFinancialYear].Value, &stored))
	assert.Equal(t, 2027, stored.EndYear)

	c, rec = newJSONContext(e, http.MethodPut, "/api/v1/settings/financial-year", `{"startYear": 1990}`)
	require.NoError(t, h.SetFinancialYear(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetExchangeRates(t *testing.T) {
	e, h, repo := newSettingsHandlerFixture()

	c, rec := newJSONContext(e, http.MethodPut, "/api/v1/settings/exchange-rate", `{"rate": 112.25}`)
	require.NoError(t, h.SetExchangeRate(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, "112.25", string(repo.Settings[domain.SettingGBPToINRRate].Value))

	c, rec = newJSONContext(e, http.MethodPut, "/api/v1/settings/usd-exchange-rate", `{"rate": 0}`)
	require.NoError(t, h.SetUSDExchangeRate(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotContains(t, repo.Settings, domain.SettingUSDToINRRate)
}
