package domain

import (
	"context"
	"math"
	"time"
)

// EntryStatus is the workflow state of a monthly entry
type EntryStatus string

const (
	EntryStatusDraft     EntryStatus = "draft"
	EntryStatusSubmitted EntryStatus = "submitted"
)

// IsValid reports whether s is a known status
func (s EntryStatus) IsValid() bool {
	return s == EntryStatusDraft || s == EntryStatusSubmitted
}

// DefaultGSTRate is applied when an entry is saved without a GST rate
const DefaultGSTRate = 18.0

// DefaultRoyaltyType is the royalty type of a new entry
const DefaultRoyaltyType = "IPRS + PRS"

// EntryInputs holds the editable fields of a monthly entry
type EntryInputs struct {
	RoyaltyType    string  `json:"royaltyType"`
	CommissionRate float64 `json:"commissionRate"`
	GSTRate        float64 `json:"gstRate"`

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

	PreviousMonthOutstanding float64 `json:"previousMonthOutstanding"`
}

// Normalize replaces non-finite numbers with zero so the engine never sees NaN or Inf
func (in EntryInputs) Normalize() EntryInputs {
	for _, f := range in.numericFields() {
		if math.IsNaN(*f) || math.IsInf(*f, 0) {
			*f = 0
		}
	}
	return in
}

// SourceAmounts returns the six royalty source amounts in commission order
func (in EntryInputs) SourceAmounts() [6]float64 {
	return [6]float64{
		in.IPRSAmount,
		in.PRSAmount,
		in.SoundExchangeAmount,
		in.ISAMRAAmount,
		in.ASCAPAmount,
		in.PPLAmount,
	}
}

// NonNegativeFields lists the inputs that must not be negative, keyed by wire name
func (in EntryInputs) NonNegativeFields() map[string]float64 {
	return map[string]float64{
		"iprsAmount":                 in.IPRSAmount,
		"prsGbp":                     in.PRSGBP,
		"gbpToInrRate":               in.GBPToINRRate,
		"prsAmount":                  in.PRSAmount,
		"soundExchangeAmount":        in.SoundExchangeAmount,
		"isamraAmount":               in.ISAMRAAmount,
		"ascapAmount":                in.ASCAPAmount,
		"pplAmount":                  in.PPLAmount,
		"currentMonthGstBase":        in.CurrentMonthGSTBase,
		"previousOutstandingGstBase": in.PreviousOutstandingGSTBase,
		"currentMonthReceipt":        in.CurrentMonthReceipt,
		"currentMonthTds":            in.CurrentMonthTDS,
		"previousMonthReceipt":       in.PreviousMonthReceipt,
		"previousMonthTds":           in.PreviousMonthTDS,
	}
}

func (in *EntryInputs) numericFields() []*float64 {
	return []*float64{
		&in.CommissionRate, &in.GSTRate,
		&in.IPRSAmount, &in.PRSGBP, &in.GBPToINRRate, &in.PRSAmount,
		&in.SoundExchangeAmount, &in.ISAMRAAmount, &in.ASCAPAmount, &in.PPLAmount,
		&in.CurrentMonthGSTBase, &in.PreviousOutstandingGSTBase,
		&in.CurrentMonthReceipt, &in.CurrentMonthTDS,
		&in.PreviousMonthReceipt, &in.PreviousMonthTDS,
		&in.PreviousMonthOutstanding,
	}
}

// EntryComputed holds every derived field of a monthly entry
type EntryComputed struct {
	IPRSCommission          float64 `json:"iprsCommission"`
	PRSCommission           float64 `json:"prsCommission"`
	SoundExchangeCommission float64 `json:"soundExchangeCommission"`
	ISAMRACommission        float64 `json:"isamraCommission"`
	ASCAPCommission         float64 `json:"ascapCommission"`
	PPLCommission           float64 `json:"pplCommission"`
	TotalCommission         float64 `json:"totalCommission"`

	CurrentMonthGST                 float64 `json:"currentMonthGst"`
	CurrentMonthInvoiceTotal        float64 `json:"currentMonthInvoiceTotal"`
	PreviousOutstandingGST          float64 `json:"previousOutstandingGst"`
	PreviousOutstandingInvoiceTotal float64 `json:"previousOutstandingInvoiceTotal"`

	InvoicePendingCurrentMonth float64 `json:"invoicePendingCurrentMonth"`
	PreviousInvoicePending     float64 `json:"previousInvoicePending"`
	MonthlyOutstanding         float64 `json:"monthlyOutstanding"`
	TotalOutstanding           float64 `json:"totalOutstanding"`
}

// RoyaltyEntry is one client's accounting record for one financial-year month
type RoyaltyEntry struct {
	ID         int64       `json:"id"`
	ClientID   string      `json:"clientId"`
	ClientName string      `json:"clientName"`
	Month      Month       `json:"month"`
	Year       int         `json:"year"`
	Status     EntryStatus `json:"status"`
	EntryInputs
	EntryComputed
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// EntryFilter narrows a list query. Zero values mean "any".
type EntryFilter struct {
	ClientID      string
	Month         Month
	FinancialYear *FinancialYear
}

// RoyaltyEntryRepository persists monthly entries keyed by (clientId, month, year)
type RoyaltyEntryRepository interface {
	GetByKey(ctx context.Context, clientID string, month Month, year int) (*RoyaltyEntry, error)
	Upsert(ctx context.Context, entry *RoyaltyEntry) (*RoyaltyEntry, error)
	List(ctx context.Context, filter EntryFilter) ([]*RoyaltyEntry, error)
	UpdateStatus(ctx context.Context, clientID string, month Month, year int, status EntryStatus) (*RoyaltyEntry, error)
	Delete(ctx context.Context, clientID string, month Month, year int) error
	DeleteByClient(ctx context.Context, clientID string) (int64, error)
	RenameClient(ctx context.Context, clientID, name string) error
}
