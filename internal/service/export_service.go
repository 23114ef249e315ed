package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Workbook sheet names shared by export and import
const (
	SheetEntries = "Entries"
	SheetClients = "Clients"
)

// XLSXContentType is the MIME type of exported workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ArchiveStore stores exported files and hands out temporary download links
type ArchiveStore interface {
	Put(ctx context.Context, key string, data io.Reader, contentType string, size int64) (string, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type entryColumn struct {
	header string
	text   func(e *domain.RoyaltyEntry) string
	value  func(e *domain.RoyaltyEntry) interface{}
}

func textColumn(header string, get func(e *domain.RoyaltyEntry) string) entryColumn {
	return entryColumn{
		header: header,
		text:   get,
		value:  func(e *domain.RoyaltyEntry) interface{} { return get(e) },
	}
}

func amountColumn(header string, get func(e *domain.RoyaltyEntry) float64) entryColumn {
	return entryColumn{
		header: header,
		text:   func(e *domain.RoyaltyEntry) string { return decimal.NewFromFloat(get(e)).StringFixed(2) },
		value:  func(e *domain.RoyaltyEntry) interface{} { return get(e) },
	}
}

// inputColumn keeps every digit the user typed so a re-import reproduces the entry
func inputColumn(header string, get func(e *domain.RoyaltyEntry) float64) entryColumn {
	return entryColumn{
		header: header,
		text:   func(e *domain.RoyaltyEntry) string { return decimal.NewFromFloat(get(e)).String() },
		value:  func(e *domain.RoyaltyEntry) interface{} { return get(e) },
	}
}

// entryColumns use the JSON field names so an exported workbook can be imported again
var entryColumns = []entryColumn{
	textColumn("clientId", func(e *domain.RoyaltyEntry) string { return e.ClientID }),
	textColumn("clientName", func(e *domain.RoyaltyEntry) string { return e.ClientName }),
	textColumn("month", func(e *domain.RoyaltyEntry) string { return string(e.Month) }),
	{
		header: "year",
		text:   func(e *domain.RoyaltyEntry) string { return strconv.Itoa(e.Year) },
		value:  func(e *domain.RoyaltyEntry) interface{} { return e.Year },
	},
	textColumn("status", func(e *domain.RoyaltyEntry) string { return string(e.Status) }),
	textColumn("royaltyType", func(e *domain.RoyaltyEntry) string { return e.RoyaltyType }),
	inputColumn("commissionRate", func(e *domain.RoyaltyEntry) float64 { return e.CommissionRate }),
	inputColumn("gstRate", func(e *domain.RoyaltyEntry) float64 { return e.GSTRate }),
	inputColumn("iprsAmount", func(e *domain.RoyaltyEntry) float64 { return e.IPRSAmount }),
	inputColumn("prsGbp", func(e *domain.RoyaltyEntry) float64 { return e.PRSGBP }),
	inputColumn("gbpToInrRate", func(e *domain.RoyaltyEntry) float64 { return e.GBPToINRRate }),
	inputColumn("prsAmount", func(e *domain.RoyaltyEntry) float64 { return e.PRSAmount }),
	inputColumn("soundExchangeAmount", func(e *domain.RoyaltyEntry) float64 { return e.SoundExchangeAmount }),
	inputColumn("isamraAmount", func(e *domain.RoyaltyEntry) float64 { return e.ISAMRAAmount }),
	inputColumn("ascapAmount", func(e *domain.RoyaltyEntry) float64 { return e.ASCAPAmount }),
	inputColumn("pplAmount", func(e *domain.RoyaltyEntry) float64 { return e.PPLAmount }),
	inputColumn("currentMonthGstBase", func(e *domain.RoyaltyEntry) float64 { return e.CurrentMonthGSTBase }),
	inputColumn("previousOutstandingGstBase", func(e *domain.RoyaltyEntry) float64 { return e.PreviousOutstandingGSTBase }),
	inputColumn("currentMonthReceipt", func(e *domain.RoyaltyEntry) float64 { return e.CurrentMonthReceipt }),
	inputColumn("currentMonthTds", func(e *domain.RoyaltyEntry) float64 { return e.CurrentMonthTDS }),
	inputColumn("previousMonthReceipt", func(e *domain.RoyaltyEntry) float64 { return e.PreviousMonthReceipt }),
	inputColumn("previousMonthTds", func(e *domain.RoyaltyEntry) float64 { return e.PreviousMonthTDS }),
	inputColumn("previousMonthOutstanding", func(e *domain.RoyaltyEntry) float64 { return e.PreviousMonthOutstanding }),
	amountColumn("iprsCommission", func(e *domain.RoyaltyEntry) float64 { return e.IPRSCommission }),
	amountColumn("prsCommission", func(e *domain.RoyaltyEntry) float64 { return e.PRSCommission }),
	amountColumn("soundExchangeCommission", func(e *domain.RoyaltyEntry) float64 { return e.SoundExchangeCommission }),
	amountColumn("isamraCommission", func(e *domain.RoyaltyEntry) float64 { return e.ISAMRACommission }),
	amountColumn("ascapCommission", func(e *domain.RoyaltyEntry) float64 { return e.ASCAPCommission }),
	amountColumn("pplCommission", func(e *domain.RoyaltyEntry) float64 { return e.PPLCommission }),
	amountColumn("totalCommission", func(e *domain.RoyaltyEntry) float64 { return e.TotalCommission }),
	amountColumn("currentMonthGst", func(e *domain.RoyaltyEntry) float64 { return e.CurrentMonthGST }),
	amountColumn("currentMonthInvoiceTotal", func(e *domain.RoyaltyEntry) float64 { return e.CurrentMonthInvoiceTotal }),
	amountColumn("previousOutstandingGst", func(e *domain.RoyaltyEntry) float64 { return e.PreviousOutstandingGST }),
	amountColumn("previousOutstandingInvoiceTotal", func(e *domain.RoyaltyEntry) float64 { return e.PreviousOutstandingInvoiceTotal }),
	amountColumn("invoicePendingCurrentMonth", func(e *domain.RoyaltyEntry) float64 { return e.InvoicePendingCurrentMonth }),
	amountColumn("previousInvoicePending", func(e *domain.RoyaltyEntry) float64 { return e.PreviousInvoicePending }),
	amountColumn("monthlyOutstanding", func(e *domain.RoyaltyEntry) float64 { return e.MonthlyOutstanding }),
	amountColumn("totalOutstanding", func(e *domain.RoyaltyEntry) float64 { return e.TotalOutstanding }),
}

var clientHeaders = []string{
	"clientId", "name", "type", "clientType", "commissionRate", "previousBalance", "iprs", "prs", "isamra", "isActive",
}

func clientRow(c *domain.Client) []interface{} {
	return []interface{}{
		c.ClientID, c.Name, c.Type, c.ClientType, c.CommissionRate, c.PreviousBalance, c.IPRS, c.PRS, c.ISAMRA, c.IsActive,
	}
}

// ExportService renders a financial year's entries as CSV or XLSX
type ExportService struct {
	entryRepo     domain.RoyaltyEntryRepository
	clientRepo    domain.ClientRepository
	settings      *SettingsService
	store         ArchiveStore
	presignExpiry time.Duration
}

// NewExportService creates a new ExportService. store may be nil when archiving is not configured.
func NewExportService(entryRepo domain.RoyaltyEntryRepository, clientRepo domain.ClientRepository, settings *SettingsService, store ArchiveStore, presignExpiry time.Duration) *ExportService {
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &ExportService{
		entryRepo:     entryRepo,
		clientRepo:    clientRepo,
		settings:      settings,
		store:         store,
		presignExpiry: presignExpiry,
	}
}

// Filename returns the download name for an export
func (s *ExportService) Filename(fy domain.FinancialYear, ext string) string {
	return fmt.Sprintf("royalty-ledger-%d-%d.%s", fy.StartYear, fy.EndYear, ext)
}

// ResolveFinancialYear returns fy, or the configured year when fy is nil
func (s *ExportService) ResolveFinancialYear(ctx context.Context, fy *domain.FinancialYear) (domain.FinancialYear, error) {
	if fy != nil {
		return *fy, fy.Validate()
	}
	return s.settings.FinancialYear(ctx)
}

func (s *ExportService) entries(ctx context.Context, fy domain.FinancialYear) ([]*domain.RoyaltyEntry, error) {
	entries, err := s.entryRepo.List(ctx, domain.EntryFilter{FinancialYear: &fy})
	if err != nil {
		return nil, err
	}
	domain.SortEntries(entries)
	return entries, nil
}

// WriteCSV writes one row per entry of fy
func (s *ExportService) WriteCSV(ctx context.Context, w io.Writer, fy domain.FinancialYear) error {
	entries, err := s.entries(ctx, fy)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := make([]string, len(entryColumns))
	for i, col := range entryColumns {
		header[i] = col.header
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(entryColumns))
	for _, e := range entries {
		for i, col := range entryColumns {
			row[i] = col.text(e)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a workbook with an Entries sheet for fy and a Clients sheet
func (s *ExportService) WriteXLSX(ctx context.Context, w io.Writer, fy domain.FinancialYear) error {
	entries, err := s.entries(ctx, fy)
	if err != nil {
		return err
	}
	clients, err := s.clientRepo.List(ctx, domain.ClientFilter{IncludeInactive: true})
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetEntries); err != nil {
		return err
	}
	if _, err := f.NewSheet(SheetClients); err != nil {
		return err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	header := make([]interface{}, len(entryColumns))
	for i, col := range entryColumns {
		header[i] = col.header
	}
	if err := writeSheetRow(f, SheetEntries, 1, header); err != nil {
		return err
	}
	for i, e := range entries {
		values := make([]interface{}, len(entryColumns))
		for j, col := range entryColumns {
			values[j] = col.value(e)
		}
		if err := writeSheetRow(f, SheetEntries, i+2, values); err != nil {
			return err
		}
	}

	clientHeader := make([]interface{}, len(clientHeaders))
	for i, h := range clientHeaders {
		clientHeader[i] = h
	}
	if err := writeSheetRow(f, SheetClients, 1, clientHeader); err != nil {
		return err
	}
	for i, c := range clients {
		if err := writeSheetRow(f, SheetClients, i+2, clientRow(c)); err != nil {
			return err
		}
	}

	for _, sheet := range []string{SheetEntries, SheetClients} {
		if err := f.SetRowStyle(sheet, 1, 1, bold); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// ArchiveResult points at an archived export
type ArchiveResult struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Archive renders the XLSX export of fy, stores it and returns a presigned download link
func (s *ExportService) Archive(ctx context.Context, fy domain.FinancialYear) (*ArchiveResult, error) {
	if s.store == nil {
		return nil, domain.ErrStorageDisabled
	}

	var buf bytes.Buffer
	if err := s.WriteXLSX(ctx, &buf, fy); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	key := fmt.Sprintf("exports/%d-%d/%s-%s.xlsx", fy.StartYear, fy.EndYear, now.Format("20060102T150405Z"), uuid.New().String()[:8])

	size := int64(buf.Len())
	if _, err := s.store.Put(ctx, key, &buf, XLSXContentType, size); err != nil {
		return nil, err
	}
	url, err := s.store.PresignedURL(ctx, key, s.presignExpiry)
	if err != nil {
		return nil, err
	}

	log.Info().Str("key", key).Int64("bytes", size).Msg("Ledger export archived")
	return &ArchiveResult{Key: key, URL: url, ExpiresAt: now.Add(s.presignExpiry)}, nil
}
