package service

import (
	"context"
	"errors"
	"testing"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/mrmbilling/royalty-ledger/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fy2025 = domain.NewFinancialYear(2025)

// seedEntry stores a computed entry for the given month of fy2025
func seedEntry(repo *testutil.MockRoyaltyEntryRepository, clientID string, month domain.Month, in domain.EntryInputs) *domain.RoyaltyEntry {
	in.GSTRate = domain.DefaultGSTRate
	entry := &domain.RoyaltyEntry{
		ClientID:    clientID,
		ClientName:  "Test Client",
		Month:       month,
		Year:        fy2025.YearFor(month),
		Status:      domain.EntryStatusDraft,
		EntryInputs: in,
	}
	Recompute(entry)
	repo.AddEntry(entry)
	return entry
}

func TestCascade_CarriesEditedBalanceForward(t *testing.T) {
	repo := testutil.NewMockRoyaltyEntryRepository()

	// apr was just edited so its total is now 1200
	apr := seedEntry(repo, "MRM-1", domain.MonthApr, domain.EntryInputs{PreviousMonthOutstanding: 1200})
	require.Equal(t, 1200.0, apr.TotalOutstanding)

	may := seedEntry(repo, "MRM-1", domain.MonthMay, domain.EntryInputs{
		PreviousMonthOutstanding: 1000,
		CurrentMonthGSTBase:      100,
	})
	require.Equal(t, 1018.0, may.TotalOutstanding)

	// jun agrees with the old may total
	seedEntry(repo, "MRM-1", domain.MonthJun, domain.EntryInputs{PreviousMonthOutstanding: 1018})

	svc := NewCascadeService(repo, nil)
	modified, err := svc.Cascade(context.Background(), "MRM-1", 1, fy2025)

	require.NoError(t, err)
	require.Len(t, modified, 2)
	assert.Equal(t, domain.MonthMay, modified[0].Month)
	assert.Equal(t, domain.MonthJun, modified[1].Month)

	storedMay := repo.Entry("MRM-1", domain.MonthMay, 2025)
	assert.Equal(t, 1200.0, storedMay.PreviousMonthOutstanding)
	assert.Equal(t, 1218.0, storedMay.TotalOutstanding)

	storedJun := repo.Entry("MRM-1", domain.MonthJun, 2025)
	assert.Equal(t, 1218.0, storedJun.PreviousMonthOutstanding)
	assert.Equal(t, 1218.0, storedJun.TotalOutstanding)
}

func TestCascade_SkipsMissingMonth(t *testing.T) {
	repo := testutil.NewMockRoyaltyEntryRepository()

	seedEntry(repo, "MRM-1", domain.MonthApr, domain.EntryInputs{PreviousMonthOutstanding: 500})
	// no may entry; jun still carries an opening balance
	seedEntry(repo, "MRM-1", domain.MonthJun, domain.EntryInputs{PreviousMonthOutstanding: 300})

	svc := NewCascadeService(repo, nil)
	modified, err := svc.Cascade(context.Background(), "MRM-1", 1, fy2025)

	require.NoError(t, err)
	require.Len(t, modified, 1)
	assert.Equal(t, domain.MonthJun, modified[0].Month)

	storedJun := repo.Entry("MRM-1", domain.MonthJun, 2025)
	assert.Equal(t, 0.0, storedJun.PreviousMonthOutstanding)
	assert.Equal(t, 0.0, storedJun.TotalOutstanding)
	assert.Nil(t, repo.Entry("MRM-1", domain.MonthMay, 2025))
}

func TestCascade_SkipsMissingMonthWithZeroOpening(t *testing.T) {
	repo := testutil.NewMockRoyaltyEntryRepository()

	seedEntry(repo, "MRM-1", domain.MonthApr, domain.EntryInputs{PreviousMonthOutstanding: 500})
	seedEntry(repo, "MRM-1", domain.MonthJun, domain.EntryInputs{CurrentMonthReceipt: 10})

	svc := NewCascadeService(repo, nil)
	modified, err := svc.Cascade(context.Background(), "MRM-1", 1, fy2025)

	require.NoError(t, err)
	assert.Empty(t, modified)
	assert.Empty(t, repo.Upserts)
}

func TestCascade_SecondRunIsFixedPoint(t *testing.T) {
	repo := testutil.NewMockRoyaltyEntryRepository()

	seedEntry(repo, "MRM-1", domain.MonthApr, domain.EntryInputs{PreviousMonthOutstanding: 250.55, CommissionRate: 10, IPRSAmount: 999.99})
	for _, m := range []domain.Month{domain.MonthMay, domain.MonthJun, domain.MonthJan, domain.MonthMar} {
		seedEntry(repo, "MRM-1", m, domain.EntryInputs{
			CommissionRate:      12.5,
			IPRSAmount:          1234.56,
			PPLAmount:           77.77,
			CurrentMonthGSTBase: 40,
			CurrentMonthReceipt: 12.34,
		})
	}
	seedEntry(repo, "MRM-1", domain.MonthFeb, domain.EntryInputs{PreviousMonthOutstanding: 9999})

	svc := NewCascadeService(repo, nil)
	first, err := svc.Cascade(context.Background(), "MRM-1", 1, fy2025)
	require.NoError(t, err)
	assert.NotEmpty(t, first)

	second, err := svc.Cascade(context.Background(), "MRM-1", 1, fy2025)
	require.NoError(t, err)
	assert.Empty(t, second)
}

func TestCascade_ChainHoldsAfterRun(t *testing.T) {
	repo := testutil.NewMockRoyaltyEntryRepository()

	for i, m := range domain.MonthOrder {
		seedEntry(repo, "MRM-3", m, domain.EntryInputs{
			CommissionRate:      15,
			PRSAmount:           float64(100 * (i + 1)),
			CurrentMonthGSTBase: 10,
			CurrentMonthTDS:     1.5,
		})
	}

	svc := NewCascadeService(repo, nil)
	_, err := svc.Cascade(context.Background(), "MRM-3", 1, fy2025)
	require.NoError(t, err)

	for i := 1; i < domain.MonthsPerYear; i++ {
		prev := repo.Entry("MRM-3", domain.MonthOrder[i-1], fy2025.YearFor(domain.MonthOrder[i-1]))
		cur := repo.Entry("MRM-3", domain.MonthOrder[i], fy2025.YearFor(domain.MonthOrder[i]))
		assert.Equal(t, prev.TotalOutstanding, cur.PreviousMonthOutstanding, "month %s", cur.Month)
		assert.Equal(t, ComputeEntry(cur.EntryInputs), cur.EntryComputed, "month %s", cur.Month)
	}
}

func TestCascade_NeverTouchesEarlierMonths(t *testing.T) {
	repo := testutil.NewMockRoyaltyEntryRepository()

	seedEntry(repo, "MRM-1", domain.MonthApr, domain.EntryInputs{PreviousMonthOutstanding: 100})
	// may is inconsistent with apr but lies before the start index
	seedEntry(repo, "MRM-1", domain.MonthMay, domain.EntryInputs{PreviousMonthOutstanding: 42})
	seedEntry(repo, "MRM-1", domain.MonthJun, domain.EntryInputs{PreviousMonthOutstanding: 7})
	seedEntry(repo, "MRM-1", domain.MonthJul, domain.EntryInputs{PreviousMonthOutstanding: 7})

	svc := NewCascadeService(repo, nil)
	modified, err := svc.Cascade(context.Background(), "MRM-1", 3, fy2025)
	require.NoError(t, err)

	assert.Empty(t, modified)
	assert.Equal(t, 42.0, repo.Entry("MRM-1", domain.MonthMay, 2025).PreviousMonthOutstanding)
	assert.Equal(t, 7.0, repo.Entry("MRM-1", domain.MonthJun, 2025).PreviousMonthOutstanding)
}

func TestCascade_CrossesCalendarYear(t *testing.T) {
	repo := testutil.NewMockRoyaltyEntryRepository()

	seedEntry(repo, "MRM-1", domain.MonthDec, domain.EntryInputs{PreviousMonthOutstanding: 640})
	seedEntry(repo, "MRM-1", domain.MonthJan, domain.EntryInputs{})

	svc := NewCascadeService(repo, nil)
	modified, err := svc.Cascade(context.Background(), "MRM-1", domain.MonthJan.Index(), fy2025)
	require.NoError(t, err)

	require.Len(t, modified, 1)
	assert.Equal(t, 2026, modified[0].Year)
	assert.Equal(t, 640.0, modified[0].PreviousMonthOutstanding)
}

func TestCascade_PersistFailureHalts(t *testing.T) {
	repo := testutil.NewMockRoyaltyEntryRepository()

	seedEntry(repo, "MRM-1", domain.MonthApr, domain.EntryInputs{PreviousMonthOutstanding: 100})
	seedEntry(repo, "MRM-1", domain.MonthMay, domain.EntryInputs{})
	seedEntry(repo, "MRM-1", domain.MonthJun, domain.EntryInputs{})
	seedEntry(repo, "MRM-1", domain.MonthJul, domain.EntryInputs{})

	errDisk := errors.New("disk full")
	stored := map[domain.Month]bool{}
	repo.UpsertFn = func(entry *domain.RoyaltyEntry) (*domain.RoyaltyEntry, error) {
		if entry.Month == domain.MonthJun {
			return nil, errDisk
		}
		stored[entry.Month] = true
		cp := *entry
		return &cp, nil
	}

	reg := prometheus.NewRegistry()
	metrics := NewMetrics(reg)
	svc := NewCascadeService(repo, metrics)

	modified, err := svc.Cascade(context.Background(), "MRM-1", 1, fy2025)

	require.Error(t, err)
	assert.ErrorIs(t, err, errDisk)
	require.Len(t, modified, 1)
	assert.Equal(t, domain.MonthMay, modified[0].Month)
	assert.False(t, stored[domain.MonthJul])
	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.CascadeFailures))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.CascadeModified))
}

func TestCascade_LoadFailureHalts(t *testing.T) {
	repo := testutil.NewMockRoyaltyEntryRepository()
	errConn := errors.New("connection reset")
	repo.GetFn = func(clientID string, month domain.Month, year int) (*domain.RoyaltyEntry, error) {
		return nil, errConn
	}

	svc := NewCascadeService(repo, nil)
	modified, err := svc.Cascade(context.Background(), "MRM-1", 0, fy2025)

	assert.ErrorIs(t, err, errConn)
	assert.Empty(t, modified)
}

func TestCascadeService_PreviousOutstanding(t *testing.T) {
	repo := testutil.NewMockRoyaltyEntryRepository()
	seedEntry(repo, "MRM-1", domain.MonthApr, domain.EntryInputs{PreviousMonthOutstanding: 321.45})
	seedEntry(repo, "MRM-1", domain.MonthDec, domain.EntryInputs{PreviousMonthOutstanding: 88})
	svc := NewCascadeService(repo, nil)
	ctx := context.Background()

	tests := []struct {
		name  string
		month domain.Month
		want  float64
	}{
		{"april has no predecessor", domain.MonthApr, 0},
		{"may reads april", domain.MonthMay, 321.45},
		{"missing predecessor", domain.MonthJun, 0},
		{"january reads december", domain.MonthJan, 88},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.PreviousOutstanding(ctx, "MRM-1", tt.month, fy2025)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := svc.PreviousOutstanding(ctx, "MRM-1", domain.Month("xyz"), fy2025)
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)
}
