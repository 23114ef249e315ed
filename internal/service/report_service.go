package service

import (
	"context"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// ReportService builds the financial-year reports over stored entries
type ReportService struct {
	entryRepo domain.RoyaltyEntryRepository
	settings  *SettingsService
}

// NewReportService creates a new ReportService
func NewReportService(entryRepo domain.RoyaltyEntryRepository, settings *SettingsService) *ReportService {
	return &ReportService{
		entryRepo: entryRepo,
		settings:  settings,
	}
}

// GSTInvoiceReport lists every entry of a financial year with its GST and invoice totals
type GSTInvoiceReport struct {
	FinancialYear domain.FinancialYear    `json:"financialYear"`
	Entries       []*domain.RoyaltyEntry  `json:"entries"`
	Totals        domain.GSTInvoiceTotals `json:"totals"`
}

// ReceiptsTDSReport lists every entry of a financial year with its receipt and TDS totals
type ReceiptsTDSReport struct {
	FinancialYear domain.FinancialYear     `json:"financialYear"`
	Entries       []*domain.RoyaltyEntry   `json:"entries"`
	Totals        domain.ReceiptsTDSTotals `json:"totals"`
}

// ClientReport lists one client's entries for a financial year
type ClientReport struct {
	ClientID      string                     `json:"clientId"`
	FinancialYear domain.FinancialYear       `json:"financialYear"`
	Entries       []*domain.RoyaltyEntry     `json:"entries"`
	Summary       domain.ClientLedgerSummary `json:"summary"`
}

// money converts a stored amount into a two-decimal fixed-point value
func money(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(2)
}

// GSTInvoice builds the GST and invoice report
func (s *ReportService) GSTInvoice(ctx context.Context, fy *domain.FinancialYear) (*GSTInvoiceReport, error) {
	year, entries, err := s.entriesFor(ctx, "", fy)
	if err != nil {
		return nil, err
	}

	var t domain.GSTInvoiceTotals
	for _, e := range entries {
		t.TotalCommission = t.TotalCommission.Add(money(e.TotalCommission))
		t.CurrentMonthGSTBase = t.CurrentMonthGSTBase.Add(money(e.CurrentMonthGSTBase))
		t.CurrentMonthGST = t.CurrentMonthGST.Add(money(e.CurrentMonthGST))
		t.CurrentMonthInvoiceTotal = t.CurrentMonthInvoiceTotal.Add(money(e.CurrentMonthInvoiceTotal))
		t.PreviousOutstandingGSTBase = t.PreviousOutstandingGSTBase.Add(money(e.PreviousOutstandingGSTBase))
		t.PreviousOutstandingGST = t.PreviousOutstandingGST.Add(money(e.PreviousOutstandingGST))
		t.PreviousOutstandingInvoiceTotal = t.PreviousOutstandingInvoiceTotal.Add(money(e.PreviousOutstandingInvoiceTotal))
	}

	return &GSTInvoiceReport{FinancialYear: year, Entries: entries, Totals: t}, nil
}

// ReceiptsTDS builds the receipts and TDS report
func (s *ReportService) ReceiptsTDS(ctx context.Context, fy *domain.FinancialYear) (*ReceiptsTDSReport, error) {
	year, entries, err := s.entriesFor(ctx, "", fy)
	if err != nil {
		return nil, err
	}

	var t domain.ReceiptsTDSTotals
	for _, e := range entries {
		t.TotalCommission = t.TotalCommission.Add(money(e.TotalCommission))
		t.CurrentMonthReceipt = t.CurrentMonthReceipt.Add(money(e.CurrentMonthReceipt))
		t.CurrentMonthTDS = t.CurrentMonthTDS.Add(money(e.CurrentMonthTDS))
		t.PreviousMonthReceipt = t.PreviousMonthReceipt.Add(money(e.PreviousMonthReceipt))
		t.PreviousMonthTDS = t.PreviousMonthTDS.Add(money(e.PreviousMonthTDS))
		t.MonthlyOutstanding = t.MonthlyOutstanding.Add(money(e.MonthlyOutstanding))
		t.TotalOutstanding = t.TotalOutstanding.Add(money(e.TotalOutstanding))
	}

	return &ReceiptsTDSReport{FinancialYear: year, Entries: entries, Totals: t}, nil
}

// Summary aggregates every entry of a financial year
func (s *ReportService) Summary(ctx context.Context, fy *domain.FinancialYear) (*domain.LedgerSummary, error) {
	year, entries, err := s.entriesFor(ctx, "", fy)
	if err != nil {
		return nil, err
	}

	sum := &domain.LedgerSummary{FinancialYear: year, TotalEntries: len(entries)}
	for _, e := range entries {
		switch e.Status {
		case domain.EntryStatusDraft:
			sum.DraftCount++
		case domain.EntryStatusSubmitted:
			sum.SubmittedCount++
		}
		sum.TotalIPRS = sum.TotalIPRS.Add(money(e.IPRSAmount))
		sum.TotalPRS = sum.TotalPRS.Add(money(e.PRSAmount))
		sum.TotalSoundExchange = sum.TotalSoundExchange.Add(money(e.SoundExchangeAmount))
		sum.TotalISAMRA = sum.TotalISAMRA.Add(money(e.ISAMRAAmount))
		sum.TotalASCAP = sum.TotalASCAP.Add(money(e.ASCAPAmount))
		sum.TotalPPL = sum.TotalPPL.Add(money(e.PPLAmount))
		sum.TotalCommission = sum.TotalCommission.Add(money(e.TotalCommission))
		sum.TotalMonthlyOutstanding = sum.TotalMonthlyOutstanding.Add(money(e.MonthlyOutstanding))
		sum.TotalFinalOutstanding = sum.TotalFinalOutstanding.Add(money(e.TotalOutstanding))
	}
	return sum, nil
}

// Client builds one client's report. Its outstanding total sums every month of the year.
func (s *ReportService) Client(ctx context.Context, clientID string, fy *domain.FinancialYear) (*ClientReport, error) {
	if clientID == "" {
		return nil, domain.ErrClientIDRequired
	}
	year, entries, err := s.entriesFor(ctx, clientID, fy)
	if err != nil {
		return nil, err
	}

	report := &ClientReport{ClientID: clientID, FinancialYear: year, Entries: entries}
	for _, e := range entries {
		report.Summary.TotalCommission = report.Summary.TotalCommission.Add(money(e.TotalCommission))
		report.Summary.TotalOutstanding = report.Summary.TotalOutstanding.Add(money(e.TotalOutstanding))
		switch e.Status {
		case domain.EntryStatusDraft:
			report.Summary.DraftCount++
		case domain.EntryStatusSubmitted:
			report.Summary.SubmittedCount++
		}
	}
	return report, nil
}

// OutstandingDigest takes each client's latest stored month in the financial year and
// lists its totalOutstanding, ordered by client number
func (s *ReportService) OutstandingDigest(ctx context.Context, fy *domain.FinancialYear) (*domain.OutstandingDigest, error) {
	year, entries, err := s.entriesFor(ctx, "", fy)
	if err != nil {
		return nil, err
	}

	// entries are sorted by client then month, so the last one per client wins
	latest := make(map[string]*domain.RoyaltyEntry)
	order := make([]string, 0)
	for _, e := range entries {
		if _, seen := latest[e.ClientID]; !seen {
			order = append(order, e.ClientID)
		}
		latest[e.ClientID] = e
	}

	digest := &domain.OutstandingDigest{FinancialYear: year, Lines: make([]*domain.OutstandingLine, 0, len(order))}
	for _, id := range order {
		e := latest[id]
		line := &domain.OutstandingLine{
			ClientID:         e.ClientID,
			ClientName:       e.ClientName,
			Month:            e.Month,
			Year:             e.Year,
			TotalOutstanding: money(e.TotalOutstanding),
		}
		digest.Lines = append(digest.Lines, line)
		digest.GrandTotal = digest.GrandTotal.Add(line.TotalOutstanding)
	}
	return digest, nil
}

func (s *ReportService) entriesFor(ctx context.Context, clientID string, fy *domain.FinancialYear) (domain.FinancialYear, []*domain.RoyaltyEntry, error) {
	var year domain.FinancialYear
	if fy != nil {
		if err := fy.Validate(); err != nil {
			return year, nil, err
		}
		year = *fy
	} else {
		configured, err := s.settings.FinancialYear(ctx)
		if err != nil {
			return year, nil, err
		}
		year = configured
	}

	entries, err := s.entryRepo.List(ctx, domain.EntryFilter{ClientID: clientID, FinancialYear: &year})
	if err != nil {
		return year, nil, err
	}
	domain.SortEntries(entries)
	return year, entries, nil
}
