package domain

import "github.com/shopspring/decimal"

// GSTInvoiceTotals sums the GST and invoice columns of a report
type GSTInvoiceTotals struct {
	TotalCommission                 decimal.Decimal `json:"totalCommission"`
	CurrentMonthGSTBase             decimal.Decimal `json:"currentMonthGstBase"`
	CurrentMonthGST                 decimal.Decimal `json:"currentMonthGst"`
	CurrentMonthInvoiceTotal        decimal.Decimal `json:"currentMonthInvoiceTotal"`
	PreviousOutstandingGSTBase      decimal.Decimal `json:"previousOutstandingGstBase"`
	PreviousOutstandingGST          decimal.Decimal `json:"previousOutstandingGst"`
	PreviousOutstandingInvoiceTotal decimal.Decimal `json:"previousOutstandingInvoiceTotal"`
}

// ReceiptsTDSTotals sums the receipt, TDS and outstanding columns of a report
type ReceiptsTDSTotals struct {
	TotalCommission      decimal.Decimal `json:"totalCommission"`
	CurrentMonthReceipt  decimal.Decimal `json:"currentMonthReceipt"`
	CurrentMonthTDS      decimal.Decimal `json:"currentMonthTds"`
	PreviousMonthReceipt decimal.Decimal `json:"previousMonthReceipt"`
	PreviousMonthTDS     decimal.Decimal `json:"previousMonthTds"`
	MonthlyOutstanding   decimal.Decimal `json:"monthlyOutstanding"`
	TotalOutstanding     decimal.Decimal `json:"totalOutstanding"`
}

// LedgerSummary aggregates a whole financial year
type LedgerSummary struct {
	FinancialYear           FinancialYear   `json:"financialYear"`
	TotalEntries            int             `json:"totalEntries"`
	DraftCount              int             `json:"draftCount"`
	SubmittedCount          int             `json:"submittedCount"`
	TotalIPRS               decimal.Decimal `json:"totalIprs"`
	TotalPRS                decimal.Decimal `json:"totalPrs"`
	TotalSoundExchange      decimal.Decimal `json:"totalSoundEx"`
	TotalISAMRA             decimal.Decimal `json:"totalIsamra"`
	TotalASCAP              decimal.Decimal `json:"totalAscap"`
	TotalPPL                decimal.Decimal `json:"totalPpl"`
	TotalCommission         decimal.Decimal `json:"totalCommission"`
	TotalMonthlyOutstanding decimal.Decimal `json:"totalMonthlyOutstanding"`
	TotalFinalOutstanding   decimal.Decimal `json:"totalFinalOutstanding"`
}

// ClientLedgerSummary aggregates one client's financial year
type ClientLedgerSummary struct {
	TotalCommission  decimal.Decimal `json:"totalCommission"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
	DraftCount       int             `json:"draftCount"`
	SubmittedCount   int             `json:"submittedCount"`
}

// OutstandingLine is one client's row in the outstanding digest
type OutstandingLine struct {
	ClientID         string          `json:"clientId"`
	ClientName       string          `json:"clientName"`
	Month            Month           `json:"month"`
	Year             int             `json:"year"`
	TotalOutstanding decimal.Decimal `json:"totalOutstanding"`
}

// OutstandingDigest lists every client's latest outstanding balance in a financial year
type OutstandingDigest struct {
	FinancialYear FinancialYear      `json:"financialYear"`
	Lines         []*OutstandingLine `json:"lines"`
	GrandTotal    decimal.Decimal    `json:"grandTotal"`
}
