package cli

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/mrmbilling/royalty-ledger/internal/mailer"
	"github.com/mrmbilling/royalty-ledger/internal/service"
	"github.com/mrmbilling/royalty-ledger/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type cliFixture struct {
	entries *testutil.MockRoyaltyEntryRepository
	clients *testutil.MockClientRepository
	mailer  *testutil.MockMailer
	store   *testutil.MockArchiveStore
}

func newCLIFixture() *cliFixture {
	f := &cliFixture{
		entries: testutil.NewMockRoyaltyEntryRepository(),
		clients: testutil.NewMockClientRepository(),
		mailer:  testutil.NewMockMailer(),
		store:   testutil.NewMockArchiveStore(),
	}
	f.clients.AddClient(&domain.Client{ClientID: "MRM-1", Name: "Asha Rao", CommissionRate: 10, Fee: 0.1, PreviousBalance: 250, IsActive: true})
	return f
}

func (f *cliFixture) ledger(withMailer bool) *ledger {
	settingsRepo := testutil.NewMockSettingsRepository()
	settingsRepo.SetValue(domain.SettingFinancialYear, domain.NewFinancialYear(2025))

	metrics := service.NewMetrics(prometheus.NewRegistry())
	settings := service.NewSettingsService(settingsRepo)
	locker := service.NewLocalClientLocker()
	royalty := service.NewRoyaltyService(f.entries, f.clients, settings, service.NewCascadeService(f.entries, metrics), locker, metrics)
	clients := service.NewClientService(f.clients, f.entries, locker)

	var m mailer.Mailer
	if withMailer {
		m = f.mailer
	}
	return &ledger{
		royalty: royalty,
		imports: service.NewImportService(clients, royalty, metrics),
		exports: service.NewExportService(f.entries, f.clients, settings, f.store, 0),
		digests: service.NewDigestService(service.NewReportService(f.entries, settings), m, []string{"accounts@mrm.example"}, metrics),
		close:   func() {},
	}
}

func (f *cliFixture) save(t *testing.T, l *ledger, month domain.Month, iprs float64) {
	t.Helper()
	_, err := l.royalty.Save(context.Background(), service.SaveEntryInput{
		ClientID: "MRM-1",
		Month:    month,
		Inputs:   domain.EntryInputs{IPRSAmount: iprs},
	})
	require.NoError(t, err)
}

// resetFlags puts every flag back to its default so commands do not leak state between runs
func resetFlags(cmd *cobra.Command) {
	reset := func(fl *pflag.Flag) {
		_ = fl.Value.Set(fl.DefValue)
		fl.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, l *ledger, args ...string) (string, error) {
	t.Helper()
	orig := openLedger
	openLedger = func(ctx context.Context) (*ledger, error) { return l, nil }
	t.Cleanup(func() {
		openLedger = orig
		resetFlags(rootCmd)
	})

	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRecalc(t *testing.T) {
	f := newCLIFixture()
	l := f.ledger(false)
	f.save(t, l, domain.MonthApr, 1000)
	f.save(t, l, domain.MonthMay, 0)

	stale := f.entries.Entry("MRM-1", domain.MonthMay, 2025)
	stale.PreviousMonthOutstanding = 1
	f.entries.AddEntry(stale)

	out, err := run(t, l, "recalc", "--client", "MRM-1")
	require.NoError(t, err)

	assert.Contains(t, out, "CLIENT")
	assert.Contains(t, out, "MRM-1")
	assert.Equal(t, 350.0, f.entries.Entry("MRM-1", domain.MonthMay, 2025).PreviousMonthOutstanding)
}

func TestRecalc_UnknownClient(t *testing.T) {
	f := newCLIFixture()

	_, err := run(t, f.ledger(false), "recalc", "--client", "MRM-404")
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestExport_CSVToStdout(t *testing.T) {
	f := newCLIFixture()
	l := f.ledger(false)
	f.save(t, l, domain.MonthApr, 1000)

	out, err := run(t, l, "export", "--format", "csv", "--out", "-")
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "clientId", records[0][0])
	assert.Equal(t, "MRM-1", records[1][0])
}

func TestExport_XLSXToFile(t *testing.T) {
	f := newCLIFixture()
	l := f.ledger(false)
	f.save(t, l, domain.MonthApr, 1000)
	path := filepath.Join(t.TempDir(), "ledger.xlsx")

	out, err := run(t, l, "export", "--out", path, "--financial-year", "2025-26")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	wb, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows(service.SheetEntries)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestExport_Archive(t *testing.T) {
	f := newCLIFixture()

	out, err := run(t, f.ledger(false), "export", "--archive")
	require.NoError(t, err)

	assert.Contains(t, out, "archived exports/2025-2026/")
	assert.Len(t, f.store.Objects, 1)
}

func TestExport_UnknownFormat(t *testing.T) {
	f := newCLIFixture()

	_, err := run(t, f.ledger(false), "export", "--format", "pdf")
	assert.ErrorContains(t, err, "unknown format")
}

func TestDigest(t *testing.T) {
	f := newCLIFixture()
	l := f.ledger(true)
	f.save(t, l, domain.MonthApr, 1000)

	out, err := run(t, l, "digest", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Royalty outstanding digest")
	assert.Contains(t, out, "MRM-1")
	assert.Empty(t, f.mailer.Sent)

	out, err = run(t, l, "digest")
	require.NoError(t, err)
	assert.Contains(t, out, "digest sent: 1 clients, total ₹350.00")
	assert.Len(t, f.mailer.Sent, 1)
}

func TestDigest_MailerDisabled(t *testing.T) {
	f := newCLIFixture()

	_, err := run(t, f.ledger(false), "digest")
	assert.ErrorIs(t, err, domain.ErrMailerDisabled)
}

func TestImport(t *testing.T) {
	f := newCLIFixture()
	l := f.ledger(false)

	wb := excelize.NewFile()
	require.NoError(t, wb.SetSheetName("Sheet1", service.SheetEntries))
	rows := [][]interface{}{
		{"clientId", "month", "iprsAmount"},
		{"MRM-1", "apr", 1000},
		{"MRM-1", "may", -1},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, wb.SetSheetRow(service.SheetEntries, cell, &values))
	}
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	require.NoError(t, wb.SaveAs(path))
	require.NoError(t, wb.Close())

	out, err := run(t, l, "import", path)
	require.NoError(t, err)

	assert.Contains(t, out, "entries saved: 1, failed: 1")
	assert.Contains(t, out, "row 3 (MRM-1 may)")
	assert.NotNil(t, f.entries.Entry("MRM-1", domain.MonthApr, 2025))
}

func TestImport_MissingFile(t *testing.T) {
	f := newCLIFixture()

	_, err := run(t, f.ledger(false), "import", filepath.Join(t.TempDir(), "missing.xlsx"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
