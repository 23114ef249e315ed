package service

import (
	"math"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
)

// roundingEpsilon is float64 machine epsilon. It is added before rounding so that
// products like 1.005 that land just below the half still round up.
const roundingEpsilon = 2.220446049250313e-16

// Round2 rounds v to two decimal places, half away from zero
func Round2(v float64) float64 {
	r := math.Round((v+roundingEpsilon)*100) / 100
	if r == 0 {
		// collapse -0
		return 0
	}
	return r
}

// ComputeEntry derives every computed field of a monthly entry from its inputs.
// Each intermediate value is rounded to two decimals before it is used again;
// stored outstanding balances depend on reproducing that exactly.
//
// GSTRate is used as given. Callers default it before calling.
func ComputeEntry(in domain.EntryInputs) domain.EntryComputed {
	in = in.Normalize()

	var out domain.EntryComputed

	// Commissions
	rate := in.CommissionRate / 100
	commissions := [6]*float64{
		&out.IPRSCommission,
		&out.PRSCommission,
		&out.SoundExchangeCommission,
		&out.ISAMRACommission,
		&out.ASCAPCommission,
		&out.PPLCommission,
	}
	var sum float64
	for i, amount := range in.SourceAmounts() {
		*commissions[i] = Round2(amount * rate)
		sum += *commissions[i]
	}
	out.TotalCommission = Round2(sum)

	// GST and invoice totals
	gst := in.GSTRate / 100
	out.CurrentMonthGST = Round2(in.CurrentMonthGSTBase * gst)
	out.CurrentMonthInvoiceTotal = Round2(in.CurrentMonthGSTBase + out.CurrentMonthGST)
	out.PreviousOutstandingGST = Round2(in.PreviousOutstandingGSTBase * gst)
	out.PreviousOutstandingInvoiceTotal = Round2(in.PreviousOutstandingGSTBase + out.PreviousOutstandingGST)

	// Pending amounts
	out.InvoicePendingCurrentMonth = Round2(out.TotalCommission - in.CurrentMonthGSTBase)
	out.PreviousInvoicePending = Round2(in.PreviousMonthOutstanding - in.PreviousOutstandingGSTBase)

	// Outstanding
	out.MonthlyOutstanding = Round2(out.InvoicePendingCurrentMonth + out.CurrentMonthInvoiceTotal -
		in.CurrentMonthReceipt - in.CurrentMonthTDS)
	out.TotalOutstanding = Round2(out.PreviousInvoicePending + out.PreviousOutstandingInvoiceTotal -
		in.PreviousMonthReceipt - in.PreviousMonthTDS + out.MonthlyOutstanding)

	return out
}

// Recompute normalizes an entry's inputs and refreshes its computed fields in place
func Recompute(entry *domain.RoyaltyEntry) {
	entry.EntryInputs = entry.EntryInputs.Normalize()
	entry.EntryComputed = ComputeEntry(entry.EntryInputs)
}

// PRSField names one of the three linked PRS inputs
type PRSField string

const (
	PRSFieldGBP    PRSField = "prsGbp"
	PRSFieldRate   PRSField = "gbpToInrRate"
	PRSFieldAmount PRSField = "prsAmount"
)

// IsValid reports whether f is one of the linked PRS fields
func (f PRSField) IsValid() bool {
	return f == PRSFieldGBP || f == PRSFieldRate || f == PRSFieldAmount
}

// PRSValues holds the linked PRS inputs: GBP amount, GBP->INR rate and INR amount
type PRSValues struct {
	GBP    float64 `json:"prsGbp"`
	Rate   float64 `json:"gbpToInrRate"`
	Amount float64 `json:"prsAmount"`
}

// LinkPRS fills in the third linked PRS value after one of them was edited.
// Editing the GBP amount or the rate recomputes the INR amount when both are set.
// Editing the INR amount back-solves the rate from the GBP amount, or the GBP
// amount from the rate when no GBP amount is known. Values that cannot be
// derived are returned unchanged.
func LinkPRS(edited PRSField, v PRSValues) PRSValues {
	switch edited {
	case PRSFieldGBP, PRSFieldRate:
		if v.GBP != 0 && v.Rate != 0 {
			v.Amount = Round2(v.GBP * v.Rate)
		}
	case PRSFieldAmount:
		if v.Amount == 0 {
			return v
		}
		switch {
		case v.GBP != 0:
			v.Rate = Round2(v.Amount / v.GBP)
		case v.Rate != 0:
			v.GBP = Round2(v.Amount / v.Rate)
		}
	}
	return v
}
