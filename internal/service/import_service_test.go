package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes sheets of string rows into an in-memory workbook
func buildWorkbook(t *testing.T, sheets map[string][][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, f.SetSheetName("Sheet1", name))
			first = false
		} else {
			_, err := f.NewSheet(name)
			require.NoError(t, err)
		}
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			values := row
			require.NoError(t, f.SetSheetRow(name, cell, &values))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return &buf
}

func newImportFixture(t *testing.T) (*ImportService, *royaltyFixture) {
	t.Helper()
	f := newRoyaltyFixture(t)
	svc := NewImportService(NewClientService(f.clients, f.entries, nil), f.svc, f.metrics)
	svc.SetEventPublisher(f.publisher)
	return svc, f
}

func TestImportService_EntriesSavedInMonthOrder(t *testing.T) {
	svc, f := newImportFixture(t)

	wb := buildWorkbook(t, map[string][][]interface{}{
		SheetEntries: {
			{"clientId", "month", "iprsAmount", "currentMonthGstBase"},
			{"MRM-1", "jun", 0, 0},
			{"MRM-1", "May", 500, 0},
			{"MRM-1", "apr", 1000, 100},
		},
	})

	result, err := svc.Import(context.Background(), wb, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, result.SavedCount)
	assert.Zero(t, result.FailedCount)
	assert.Zero(t, result.WarningCount)
	require.Len(t, result.Entries, 3)
	assert.Equal(t, domain.MonthApr, result.Entries[0].Month)
	assert.Equal(t, 4, result.Entries[0].Row)

	apr := f.entries.Entry("MRM-1", domain.MonthApr, 2025)
	may := f.entries.Entry("MRM-1", domain.MonthMay, 2025)
	jun := f.entries.Entry("MRM-1", domain.MonthJun, 2025)
	require.NotNil(t, apr)
	require.NotNil(t, may)
	require.NotNil(t, jun)
	assert.Equal(t, apr.TotalOutstanding, may.PreviousMonthOutstanding)
	assert.Equal(t, may.TotalOutstanding, jun.PreviousMonthOutstanding)

	types := f.publisher.Types()
	assert.Equal(t, "ledger.imported", types[len(types)-1])
}

func TestImportService_RowErrorsDoNotStopImport(t *testing.T) {
	svc, f := newImportFixture(t)

	wb := buildWorkbook(t, map[string][][]interface{}{
		SheetEntries: {
			{"clientId", "month", "iprsAmount", "pplAmount"},
			{"MRM-1", "apr", -5, 0},
			{"MRM-1", "may", "abc", 0},
			{"MRM-404", "jun", 1, 0},
			{"MRM-1", "jul", 10, 20},
			{"", "", "", ""},
		},
	})

	result, err := svc.Import(context.Background(), wb, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, result.SavedCount)
	assert.Equal(t, 3, result.FailedCount)
	assert.Len(t, result.Entries, 4)
	assert.NotNil(t, f.entries.Entry("MRM-1", domain.MonthJul, 2025))

	errorsByMonth := map[domain.Month]string{}
	for _, row := range result.Entries {
		errorsByMonth[row.Month] = row.Error
	}
	assert.Contains(t, errorsByMonth[domain.MonthApr], "negative")
	assert.Contains(t, errorsByMonth[domain.MonthMay], "iprsAmount")
	assert.Contains(t, errorsByMonth[domain.MonthJun], "not found")
}

func TestImportService_ClientsSheet(t *testing.T) {
	svc, f := newImportFixture(t)

	wb := buildWorkbook(t, map[string][][]interface{}{
		SheetClients: {
			{"clientId", "name", "commissionRate", "previousBalance", "iprs", "prs"},
			{"MRM-7", "Meera Nair", 15, "1,200.50", "yes", "FALSE"},
			{"MRM-1", "Asha R.", "", "", "", ""},
			{"MRM-8", "Bad Rate", "lots", "", "", ""},
		},
	})

	result, err := svc.Import(context.Background(), wb, nil)
	require.NoError(t, err)
	require.Len(t, result.Clients, 3)

	statuses := map[string]string{}
	for _, c := range result.Clients {
		statuses[c.ClientID] = c.Status
	}
	assert.Equal(t, BulkStatusCreated, statuses["MRM-7"])
	assert.Equal(t, BulkStatusUpdated, statuses["MRM-1"])
	assert.Equal(t, BulkStatusFailed, statuses["MRM-8"])

	meera, err := f.clients.GetByID(context.Background(), "MRM-7")
	require.NoError(t, err)
	assert.Equal(t, 15.0, meera.CommissionRate)
	assert.Equal(t, 1200.5, meera.PreviousBalance)
	assert.True(t, meera.IPRS)
	assert.False(t, meera.PRS)

	asha, err := f.clients.GetByID(context.Background(), "MRM-1")
	require.NoError(t, err)
	assert.Equal(t, "Asha R.", asha.Name)
	assert.Equal(t, 10.0, asha.CommissionRate)
}

func TestImportService_YearColumnSelectsFinancialYear(t *testing.T) {
	svc, f := newImportFixture(t)

	wb := buildWorkbook(t, map[string][][]interface{}{
		SheetEntries: {
			{"clientId", "month", "year", "prsGbp", "gbpToInrRate"},
			{"MRM-1", "feb", 2025, 10, 110.5},
		},
	})

	result, err := svc.Import(context.Background(), wb, nil)
	require.NoError(t, err)
	require.Equal(t, 1, result.SavedCount)

	feb := f.entries.Entry("MRM-1", domain.MonthFeb, 2025)
	require.NotNil(t, feb)
	assert.Equal(t, 1105.0, feb.PRSAmount)
	assert.Equal(t, 110.5, feb.PRSCommission)
}

func TestImportService_InvalidWorkbook(t *testing.T) {
	svc, _ := newImportFixture(t)

	_, err := svc.Import(context.Background(), strings.NewReader("not a workbook"), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidWorkbook)

	wb := buildWorkbook(t, map[string][][]interface{}{
		"Sheet9": {{"anything"}},
	})
	_, err = svc.Import(context.Background(), wb, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidWorkbook)

	wb = buildWorkbook(t, map[string][][]interface{}{
		SheetEntries: {{"client", "month"}, {"MRM-1", "apr"}},
	})
	_, err = svc.Import(context.Background(), wb, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidWorkbook)
}
