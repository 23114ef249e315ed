package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/mrmbilling/royalty-ledger/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func newExportFixture(t *testing.T, store ArchiveStore) (*ExportService, *testutil.MockRoyaltyEntryRepository, *testutil.MockClientRepository) {
	t.Helper()
	entries := testutil.NewMockRoyaltyEntryRepository()
	clients := testutil.NewMockClientRepository()
	settings := testutil.NewMockSettingsRepository()
	settings.SetValue(domain.SettingFinancialYear, fy2025)

	clients.AddClient(&domain.Client{ClientID: "MRM-1", Name: "Asha Rao", CommissionRate: 10, Fee: 0.1, PreviousBalance: 50, IsActive: true})
	seedEntry(entries, "MRM-1", domain.MonthMay, domain.EntryInputs{CommissionRate: 10, IPRSAmount: 1234.5, PreviousMonthOutstanding: 50})
	seedEntry(entries, "MRM-1", domain.MonthApr, domain.EntryInputs{CommissionRate: 10, PreviousMonthOutstanding: 50})

	return NewExportService(entries, clients, NewSettingsService(settings), store, 0), entries, clients
}

func TestExportService_WriteCSV(t *testing.T) {
	svc, _, _ := newExportFixture(t, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(context.Background(), &buf, fy2025))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	header := records[0]
	assert.Equal(t, "clientId", header[0])
	assert.Equal(t, "totalOutstanding", header[len(header)-1])

	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("missing column %s", name)
		return -1
	}

	assert.Equal(t, "apr", records[1][col("month")])
	assert.Equal(t, "may", records[2][col("month")])
	assert.Equal(t, "1234.5", records[2][col("iprsAmount")])
	assert.Equal(t, "123.45", records[2][col("iprsCommission")])
	assert.Equal(t, "2025", records[2][col("year")])
}

func TestExportService_WriteCSV_KeepsInputPrecision(t *testing.T) {
	svc, entries, _ := newExportFixture(t, nil)
	entries.Entries = map[string]*domain.RoyaltyEntry{}
	seedEntry(entries, "MRM-1", domain.MonthJun, domain.EntryInputs{
		CommissionRate: 12.5,
		PRSGBP:         10,
		GBPToINRRate:   110.555,
		PRSAmount:      1105.55,
	})

	var buf bytes.Buffer
	require.NoError(t, svc.WriteCSV(context.Background(), &buf, fy2025))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	row := make(map[string]string, len(records[0]))
	for i, h := range records[0] {
		row[h] = records[1][i]
	}

	assert.Equal(t, "110.555", row["gbpToInrRate"])
	assert.Equal(t, "12.5", row["commissionRate"])
	assert.Equal(t, "1105.55", row["prsAmount"])
	assert.Equal(t, "138.19", row["prsCommission"])
	assert.Equal(t, "138.19", row["totalOutstanding"])
}

func TestExportService_WriteXLSX(t *testing.T) {
	svc, _, _ := newExportFixture(t, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteXLSX(context.Background(), &buf, fy2025))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetEntries)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "clientId", rows[0][0])
	assert.Equal(t, "MRM-1", rows[1][0])

	clientRows, err := f.GetRows(SheetClients)
	require.NoError(t, err)
	require.Len(t, clientRows, 2)
	assert.Equal(t, "Asha Rao", clientRows[1][1])
}

func TestExportService_RoundTripThroughImport(t *testing.T) {
	svc, source, _ := newExportFixture(t, nil)

	var buf bytes.Buffer
	require.NoError(t, svc.WriteXLSX(context.Background(), &buf, fy2025))

	f := newRoyaltyFixture(t)
	f.clients.Clients = map[string]*domain.Client{}
	importer := NewImportService(NewClientService(f.clients, f.entries, nil), f.svc, f.metrics)

	result, err := importer.Import(context.Background(), &buf, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SavedCount)
	assert.Zero(t, result.FailedCount)

	for _, m := range []domain.Month{domain.MonthApr, domain.MonthMay} {
		want := source.Entry("MRM-1", m, 2025)
		got := f.entries.Entry("MRM-1", m, 2025)
		require.NotNil(t, got)
		assert.Equal(t, want.EntryComputed, got.EntryComputed, "month %s", m)
	}
}

func TestExportService_Archive(t *testing.T) {
	store := testutil.NewMockArchiveStore()
	svc, _, _ := newExportFixture(t, store)

	res, err := svc.Archive(context.Background(), fy2025)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(res.Key, "exports/2025-2026/"))
	assert.True(t, strings.HasSuffix(res.Key, ".xlsx"))
	assert.Contains(t, res.URL, res.Key)
	assert.NotEmpty(t, store.Objects[res.Key])
}

func TestExportService_ArchiveDisabled(t *testing.T) {
	svc, _, _ := newExportFixture(t, nil)

	_, err := svc.Archive(context.Background(), fy2025)
	assert.ErrorIs(t, err, domain.ErrStorageDisabled)
}

func TestExportService_Filename(t *testing.T) {
	svc, _, _ := newExportFixture(t, nil)
	assert.Equal(t, "royalty-ledger-2025-2026.csv", svc.Filename(fy2025, "csv"))
}
