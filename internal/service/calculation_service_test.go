package service

import (
	"math"
	"testing"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
)

func computedFields(c domain.EntryComputed) map[string]float64 {
	return map[string]float64{
		"iprsCommission":                  c.IPRSCommission,
		"prsCommission":                   c.PRSCommission,
		"soundExchangeCommission":         c.SoundExchangeCommission,
		"isamraCommission":                c.ISAMRACommission,
		"ascapCommission":                 c.ASCAPCommission,
		"pplCommission":                   c.PPLCommission,
		"totalCommission":                 c.TotalCommission,
		"currentMonthGst":                 c.CurrentMonthGST,
		"currentMonthInvoiceTotal":        c.CurrentMonthInvoiceTotal,
		"previousOutstandingGst":          c.PreviousOutstandingGST,
		"previousOutstandingInvoiceTotal": c.PreviousOutstandingInvoiceTotal,
		"invoicePendingCurrentMonth":      c.InvoicePendingCurrentMonth,
		"previousInvoicePending":          c.PreviousInvoicePending,
		"monthlyOutstanding":              c.MonthlyOutstanding,
		"totalOutstanding":                c.TotalOutstanding,
	}
}

func sampleInputs() domain.EntryInputs {
	return domain.EntryInputs{
		CommissionRate:             15,
		GSTRate:                    18,
		IPRSAmount:                 12345.60,
		PRSAmount:                  2000,
		SoundExchangeAmount:        333.40,
		CurrentMonthGSTBase:        2000,
		PreviousOutstandingGSTBase: 500,
		CurrentMonthReceipt:        1000,
		CurrentMonthTDS:            100,
		PreviousMonthReceipt:       200,
		PreviousMonthTDS:           20,
		PreviousMonthOutstanding:   1500,
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"already two decimals", 12.34, 12.34},
		{"rounds down", 12.344, 12.34},
		{"rounds up", 12.346, 12.35},
		{"half stored below the midpoint", 1.005, 1.01},
		{"exact half", 0.125, 0.13},
		{"integer", 100, 100},
		{"negative", -12.346, -12.35},
		{"zero", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Round2(tt.in))
		})
	}
}

func TestRound2_NoNegativeZero(t *testing.T) {
	r := Round2(-0.001)

	assert.Equal(t, 0.0, r)
	assert.False(t, math.Signbit(r))
}

func TestComputeEntry_SingleSourceCommission(t *testing.T) {
	out := ComputeEntry(domain.EntryInputs{CommissionRate: 10, GSTRate: 18, IPRSAmount: 1000})

	assert.Equal(t, 100.0, out.IPRSCommission)
	assert.Equal(t, 100.0, out.TotalCommission)
	assert.Equal(t, 0.0, out.PRSCommission)
	assert.Equal(t, 0.0, out.PPLCommission)
}

func TestComputeEntry_CurrentMonthGST(t *testing.T) {
	out := ComputeEntry(domain.EntryInputs{GSTRate: 18, CurrentMonthGSTBase: 1000})

	assert.Equal(t, 180.0, out.CurrentMonthGST)
	assert.Equal(t, 1180.0, out.CurrentMonthInvoiceTotal)
}

func TestComputeEntry_InvoicePendingAndMonthlyOutstanding(t *testing.T) {
	// 10% of 5000 gives a total commission of 500
	out := ComputeEntry(domain.EntryInputs{
		CommissionRate:      10,
		GSTRate:             18,
		IPRSAmount:          5000,
		CurrentMonthGSTBase: 500,
	})

	assert.Equal(t, 500.0, out.TotalCommission)
	assert.Equal(t, 90.0, out.CurrentMonthGST)
	assert.Equal(t, 590.0, out.CurrentMonthInvoiceTotal)
	assert.Equal(t, 0.0, out.InvoicePendingCurrentMonth)
	assert.Equal(t, 590.0, out.MonthlyOutstanding)
	assert.Equal(t, 590.0, out.TotalOutstanding)
}

func TestComputeEntry_FullChain(t *testing.T) {
	out := ComputeEntry(sampleInputs())

	assert.Equal(t, 1851.84, out.IPRSCommission)
	assert.Equal(t, 300.0, out.PRSCommission)
	assert.Equal(t, 50.01, out.SoundExchangeCommission)
	assert.Equal(t, 2201.85, out.TotalCommission)
	assert.Equal(t, 360.0, out.CurrentMonthGST)
	assert.Equal(t, 2360.0, out.CurrentMonthInvoiceTotal)
	assert.Equal(t, 90.0, out.PreviousOutstandingGST)
	assert.Equal(t, 590.0, out.PreviousOutstandingInvoiceTotal)
	assert.Equal(t, 201.85, out.InvoicePendingCurrentMonth)
	assert.Equal(t, 1000.0, out.PreviousInvoicePending)
	assert.Equal(t, 1461.85, out.MonthlyOutstanding)
	assert.Equal(t, 2831.85, out.TotalOutstanding)
}

func TestComputeEntry_NegativeOutstandingIsValid(t *testing.T) {
	out := ComputeEntry(domain.EntryInputs{
		CommissionRate:      10,
		GSTRate:             18,
		IPRSAmount:          1000,
		CurrentMonthReceipt: 500,
	})

	assert.Equal(t, -400.0, out.MonthlyOutstanding)
	assert.Equal(t, -400.0, out.TotalOutstanding)
}

func TestComputeEntry_NonFiniteInputsTreatedAsZero(t *testing.T) {
	in := domain.EntryInputs{
		CommissionRate:      10,
		GSTRate:             18,
		IPRSAmount:          math.NaN(),
		PRSAmount:           1000,
		CurrentMonthReceipt: math.Inf(1),
	}

	out := ComputeEntry(in)

	assert.Equal(t, 0.0, out.IPRSCommission)
	assert.Equal(t, 100.0, out.TotalCommission)
	assert.Equal(t, 100.0, out.MonthlyOutstanding)
	for name, v := range computedFields(out) {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), name)
	}
}

func TestComputeEntry_ZeroGSTRateIsNotDefaulted(t *testing.T) {
	out := ComputeEntry(domain.EntryInputs{CurrentMonthGSTBase: 1000})

	assert.Equal(t, 0.0, out.CurrentMonthGST)
	assert.Equal(t, 1000.0, out.CurrentMonthInvoiceTotal)
}

func TestComputeEntry_Idempotent(t *testing.T) {
	in := sampleInputs()

	first := ComputeEntry(in)
	second := ComputeEntry(in)
	assert.Equal(t, first, second)

	entry := &domain.RoyaltyEntry{EntryInputs: in}
	Recompute(entry)
	snapshot := *entry
	Recompute(entry)
	assert.Equal(t, snapshot, *entry)
}

func TestComputeEntry_RoundingClosure(t *testing.T) {
	inputs := []domain.EntryInputs{
		sampleInputs(),
		{CommissionRate: 12.5, GSTRate: 18, IPRSAmount: 1234.567, PRSAmount: 98.765, PPLAmount: 0.333},
		{CommissionRate: 33.33, GSTRate: 12, ASCAPAmount: 777.77, ISAMRAAmount: 1.01, CurrentMonthGSTBase: 333.333},
		{CommissionRate: 7, GSTRate: 18, PreviousMonthOutstanding: -1234.5678, PreviousOutstandingGSTBase: 99.999},
	}

	for _, in := range inputs {
		for name, v := range computedFields(ComputeEntry(in)) {
			assert.Equal(t, math.Round(v*100)/100, v, name)
		}
	}
}

func TestComputeEntry_CommissionSumLaw(t *testing.T) {
	in := domain.EntryInputs{
		GSTRate:             18,
		IPRSAmount:          1234.55,
		PRSAmount:           987.65,
		SoundExchangeAmount: 0.05,
		ISAMRAAmount:        333.33,
		ASCAPAmount:         10.10,
		PPLAmount:           45.45,
	}

	for rate := 0.0; rate <= 100; rate += 2.5 {
		in.CommissionRate = rate
		out := ComputeEntry(in)

		fraction := rate / 100
		var sum float64
		for _, amount := range in.SourceAmounts() {
			sum += Round2(amount * fraction)
		}
		assert.Equal(t, Round2(sum), out.TotalCommission, "rate %v", rate)
	}
}

func TestRecompute_NormalizesStoredInputs(t *testing.T) {
	entry := &domain.RoyaltyEntry{EntryInputs: domain.EntryInputs{GSTRate: 18, PPLAmount: math.NaN()}}

	Recompute(entry)

	assert.Equal(t, 0.0, entry.PPLAmount)
}

func TestLinkPRS(t *testing.T) {
	tests := []struct {
		name   string
		edited PRSField
		in     PRSValues
		want   PRSValues
	}{
		{
			name:   "gbp edit derives amount",
			edited: PRSFieldGBP,
			in:     PRSValues{GBP: 100, Rate: 110.5},
			want:   PRSValues{GBP: 100, Rate: 110.5, Amount: 11050},
		},
		{
			name:   "rate edit derives amount",
			edited: PRSFieldRate,
			in:     PRSValues{GBP: 12.5, Rate: 100, Amount: 1},
			want:   PRSValues{GBP: 12.5, Rate: 100, Amount: 1250},
		},
		{
			name:   "rate edit without gbp leaves amount",
			edited: PRSFieldRate,
			in:     PRSValues{Rate: 100, Amount: 55},
			want:   PRSValues{Rate: 100, Amount: 55},
		},
		{
			name:   "amount edit back-solves missing rate",
			edited: PRSFieldAmount,
			in:     PRSValues{GBP: 100, Amount: 11000},
			want:   PRSValues{GBP: 100, Rate: 110, Amount: 11000},
		},
		{
			name:   "amount edit back-solves missing gbp",
			edited: PRSFieldAmount,
			in:     PRSValues{Rate: 110, Amount: 5500},
			want:   PRSValues{GBP: 50, Rate: 110, Amount: 5500},
		},
		{
			name:   "amount edit with both known updates rate",
			edited: PRSFieldAmount,
			in:     PRSValues{GBP: 200, Rate: 100, Amount: 21000},
			want:   PRSValues{GBP: 200, Rate: 105, Amount: 21000},
		},
		{
			name:   "amount edit with nothing known",
			edited: PRSFieldAmount,
			in:     PRSValues{Amount: 300},
			want:   PRSValues{Amount: 300},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LinkPRS(tt.edited, tt.in))
		})
	}
}
