package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/mrmbilling/royalty-ledger/internal/middleware"
	"github.com/mrmbilling/royalty-ledger/internal/service"
	"github.com/mrmbilling/royalty-ledger/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newImportHandlerFixture(t *testing.T) (*ImportHandler, *testutil.MockRoyaltyEntryRepository, *testutil.MockClientRepository) {
	t.Helper()
	entries := testutil.NewMockRoyaltyEntryRepository()
	clients := testutil.NewMockClientRepository()
	settings := testutil.NewMockSettingsRepository()
	settings.SetValue(domain.SettingFinancialYear, domain.NewFinancialYear(2025))

	metrics := service.NewMetrics(prometheus.NewRegistry())
	royaltyService := service.NewRoyaltyService(entries, clients, service.NewSettingsService(settings),
		service.NewCascadeService(entries, metrics), service.NewLocalClientLocker(), metrics)
	importService := service.NewImportService(service.NewClientService(clients, entries, nil), royaltyService, metrics)
	return NewImportHandler(importService), entries, clients
}

func ledgerWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", service.SheetClients))
	_, err := f.NewSheet(service.SheetEntries)
	require.NoError(t, err)

	sheets := map[string][][]interface{}{
		service.SheetClients: {
			{"clientId", "name", "commissionRate"},
			{"MRM-5", "Ravi Menon", 10},
		},
		service.SheetEntries: {
			{"clientId", "month", "iprsAmount"},
			{"MRM-5", "may", 500},
			{"MRM-5", "apr", 1000},
			{"MRM-5", "smarch", 1},
		},
	}
	for sheet, rows := range sheets {
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(sheet, cell, &values))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func newUploadContext(t *testing.T, e *echo.Echo, filename string, content []byte) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if content != nil {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.Copy(part, bytes.NewReader(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	setupAuthContext(c, "auth0|admin", "admin@mrm.example", middleware.RoleAdmin)
	return c, rec
}

func TestImportWorkbook(t *testing.T) {
	h, entries, clients := newImportHandlerFixture(t)
	e := echo.New()

	c, rec := newUploadContext(t, e, "ledger.xlsx", ledgerWorkbook(t))
	require.NoError(t, h.ImportWorkbook(c))

	require.Equal(t, http.StatusOK, rec.Code)
	var result service.ImportResult
	decodeJSON(t, rec, &result)
	require.Len(t, result.Clients, 1)
	assert.Equal(t, service.BulkStatusCreated, result.Clients[0].Status)
	assert.Equal(t, 2, result.SavedCount)
	assert.Equal(t, 1, result.FailedCount)

	assert.Contains(t, clients.Clients, "MRM-5")
	apr := entries.Entry("MRM-5", domain.MonthApr, 2025)
	may := entries.Entry("MRM-5", domain.MonthMay, 2025)
	require.NotNil(t, apr)
	require.NotNil(t, may)
	assert.Equal(t, apr.TotalOutstanding, may.PreviousMonthOutstanding)
}

func TestImportWorkbook_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
	}{
		{"missing file", nil},
		{"not a workbook", []byte("clientId,month\nMRM-5,apr\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newImportHandlerFixture(t)

			c, rec := newUploadContext(t, echo.New(), "ledger.csv", tt.content)
			require.NoError(t, h.ImportWorkbook(c))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			p := decodeProblem(t, rec)
			require.Len(t, p.Errors, 1)
			assert.Equal(t, "file", p.Errors[0].Field)
		})
	}
}
