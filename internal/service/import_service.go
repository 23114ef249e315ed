package service

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/mrmbilling/royalty-ledger/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

// ImportService loads clients and monthly entries from a workbook
type ImportService struct {
	clients        *ClientService
	royalty        *RoyaltyService
	metrics        *Metrics
	eventPublisher websocket.EventPublisher
}

// NewImportService creates a new ImportService
func NewImportService(clients *ClientService, royalty *RoyaltyService, metrics *Metrics) *ImportService {
	return &ImportService{
		clients: clients,
		royalty: royalty,
		metrics: metrics,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ImportService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// ImportRowResult reports the outcome of one Entries row
type ImportRowResult struct {
	Row      int          `json:"row"`
	ClientID string       `json:"clientId"`
	Month    domain.Month `json:"month"`
	Year     int          `json:"year,omitempty"`
	Status   string       `json:"status"`
	Error    string       `json:"error,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
	Cascaded int          `json:"cascaded"`
}

// Import row statuses
const (
	ImportStatusSaved  = "saved"
	ImportStatusFailed = "error"
)

// ImportResult summarizes a workbook import
type ImportResult struct {
	Clients      []BulkResult      `json:"clients"`
	Entries      []ImportRowResult `json:"entries"`
	SavedCount   int               `json:"savedCount"`
	FailedCount  int               `json:"failedCount"`
	WarningCount int               `json:"warningCount"`
}

// Import reads the Clients sheet (if any) and then the Entries sheet (if any).
// Entry rows without a year column belong to fy, or to the configured year when fy is nil.
// Entries are saved through the normal save path in month order per client so that
// every cascade settles. A failing row is recorded and the import continues.
func (s *ImportService) Import(ctx context.Context, r io.Reader, fy *domain.FinancialYear) (*ImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidWorkbook, err)
	}
	defer f.Close()

	hasClients := sheetExists(f, SheetClients)
	hasEntries := sheetExists(f, SheetEntries)
	if !hasClients && !hasEntries {
		return nil, fmt.Errorf("%w: expected a %q or %q sheet", domain.ErrInvalidWorkbook, SheetClients, SheetEntries)
	}

	result := &ImportResult{Clients: []BulkResult{}, Entries: []ImportRowResult{}}

	if hasClients {
		rows, err := f.GetRows(SheetClients)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidWorkbook, err)
		}
		inputs, failed := parseClientRows(rows)
		result.Clients = append(failed, s.clients.BulkUpsert(ctx, inputs)...)
		for _, c := range result.Clients {
			outcome := "ok"
			if c.Status == BulkStatusFailed {
				outcome = "error"
			}
			s.metrics.importRow("clients", outcome)
		}
	}

	if hasEntries {
		rows, err := f.GetRows(SheetEntries)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrInvalidWorkbook, err)
		}
		if err := s.importEntries(ctx, rows, fy, result); err != nil {
			return result, err
		}
	}

	log.Info().
		Int("clients", len(result.Clients)).
		Int("entries_saved", result.SavedCount).
		Int("entries_failed", result.FailedCount).
		Msg("Workbook imported")

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(websocket.AllClientsRoom, websocket.LedgerImported(map[string]interface{}{
			"clients":     len(result.Clients),
			"savedCount":  result.SavedCount,
			"failedCount": result.FailedCount,
		}))
	}
	return result, nil
}

type parsedEntryRow struct {
	row   int
	input SaveEntryInput
	err   error
}

func (s *ImportService) importEntries(ctx context.Context, rows [][]string, fy *domain.FinancialYear, result *ImportResult) error {
	if len(rows) == 0 {
		return nil
	}
	header := headerIndex(rows[0])
	if _, ok := header["clientId"]; !ok {
		return fmt.Errorf("%w: %s sheet has no clientId column", domain.ErrInvalidWorkbook, SheetEntries)
	}
	if _, ok := header["month"]; !ok {
		return fmt.Errorf("%w: %s sheet has no month column", domain.ErrInvalidWorkbook, SheetEntries)
	}

	parsed := make([]parsedEntryRow, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		if rowIsBlank(cells) {
			continue
		}
		p := parsedEntryRow{row: i + 2}
		p.input, p.err = parseEntryRow(header, cells, fy)
		parsed = append(parsed, p)
	}

	// save in client, year, month order so each month sees its settled predecessor
	sort.SliceStable(parsed, func(i, j int) bool {
		a, b := parsed[i].input, parsed[j].input
		if na, nb := domain.ClientNumber(a.ClientID), domain.ClientNumber(b.ClientID); na != nb {
			return na < nb
		}
		if a.ClientID != b.ClientID {
			return a.ClientID < b.ClientID
		}
		if a.FinancialYear != nil && b.FinancialYear != nil && a.FinancialYear.StartYear != b.FinancialYear.StartYear {
			return a.FinancialYear.StartYear < b.FinancialYear.StartYear
		}
		return a.Month.Index() < b.Month.Index()
	})

	for _, p := range parsed {
		res := ImportRowResult{Row: p.row, ClientID: p.input.ClientID, Month: p.input.Month}
		err := p.err
		if err == nil {
			var saved *SaveResult
			saved, err = s.royalty.Save(ctx, p.input)
			if saved != nil {
				res.Year = saved.Entry.Year
				res.Warnings = saved.Warnings
				res.Cascaded = len(saved.Cascaded)
			}
		}

		if err != nil {
			res.Status = ImportStatusFailed
			res.Error = err.Error()
			result.FailedCount++
			s.metrics.importRow("entries", "error")
			log.Warn().Err(err).Int("row", p.row).Str("client_id", p.input.ClientID).Msg("Import row failed")
		} else {
			res.Status = ImportStatusSaved
			result.SavedCount++
			result.WarningCount += len(res.Warnings)
			s.metrics.importRow("entries", "ok")
		}
		result.Entries = append(result.Entries, res)
	}
	return nil
}

func sheetExists(f *excelize.File, name string) bool {
	idx, err := f.GetSheetIndex(name)
	return err == nil && idx >= 0
}

func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h != "" {
			idx[h] = i
		}
	}
	return idx
}

func rowIsBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// rowReader reads cells of one row by header name
type rowReader struct {
	header map[string]int
	cells  []string
	err    error
}

func (r *rowReader) text(name string) string {
	i, ok := r.header[name]
	if !ok || i >= len(r.cells) {
		return ""
	}
	return strings.TrimSpace(r.cells[i])
}

// number returns the numeric cell value, or nil when the cell is empty
func (r *rowReader) number(name string) *float64 {
	raw := strings.ReplaceAll(r.text(name), ",", "")
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		if r.err == nil {
			r.err = fmt.Errorf("%w: %s is not a number", domain.ErrInvalidInput, name)
		}
		return nil
	}
	return &v
}

func (r *rowReader) amount(name string) float64 {
	if v := r.number(name); v != nil {
		return *v
	}
	return 0
}

func (r *rowReader) boolean(name string) *bool {
	raw := strings.ToLower(r.text(name))
	if raw == "" {
		return nil
	}
	var b bool
	switch raw {
	case "yes", "y":
		b = true
	case "no", "n":
		b = false
	default:
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			if r.err == nil {
				r.err = fmt.Errorf("%w: %s is not a boolean", domain.ErrInvalidInput, name)
			}
			return nil
		}
		b = parsed
	}
	return &b
}

func parseEntryRow(header map[string]int, cells []string, fy *domain.FinancialYear) (SaveEntryInput, error) {
	r := &rowReader{header: header, cells: cells}

	input := SaveEntryInput{
		ClientID:      r.text("clientId"),
		Month:         domain.Month(strings.ToLower(r.text("month"))),
		FinancialYear: fy,
		Status:        domain.EntryStatus(strings.ToLower(r.text("status"))),
		Inputs: domain.EntryInputs{
			RoyaltyType:                r.text("royaltyType"),
			IPRSAmount:                 r.amount("iprsAmount"),
			PRSGBP:                     r.amount("prsGbp"),
			GBPToINRRate:               r.amount("gbpToInrRate"),
			PRSAmount:                  r.amount("prsAmount"),
			SoundExchangeAmount:        r.amount("soundExchangeAmount"),
			ISAMRAAmount:               r.amount("isamraAmount"),
			ASCAPAmount:                r.amount("ascapAmount"),
			PPLAmount:                  r.amount("pplAmount"),
			CurrentMonthGSTBase:        r.amount("currentMonthGstBase"),
			PreviousOutstandingGSTBase: r.amount("previousOutstandingGstBase"),
			CurrentMonthReceipt:        r.amount("currentMonthReceipt"),
			CurrentMonthTDS:            r.amount("currentMonthTds"),
			PreviousMonthReceipt:       r.amount("previousMonthReceipt"),
			PreviousMonthTDS:           r.amount("previousMonthTds"),
		},
		CommissionRate:           r.number("commissionRate"),
		GSTRate:                  r.number("gstRate"),
		PreviousMonthOutstanding: r.number("previousMonthOutstanding"),
	}

	// PRS in GBP without an INR amount is converted with the row's rate
	if input.Inputs.PRSAmount == 0 && input.Inputs.PRSGBP != 0 && input.Inputs.GBPToINRRate != 0 {
		linked := LinkPRS(PRSFieldGBP, PRSValues{GBP: input.Inputs.PRSGBP, Rate: input.Inputs.GBPToINRRate})
		input.Inputs.PRSAmount = linked.Amount
	}

	if year := r.number("year"); year != nil && input.Month.IsValid() {
		derived := domain.FinancialYearOf(input.Month, int(*year))
		input.FinancialYear = &derived
	}

	return input, r.err
}

func parseClientRows(rows [][]string) ([]ClientInput, []BulkResult) {
	failed := make([]BulkResult, 0)
	if len(rows) == 0 {
		return nil, failed
	}
	header := headerIndex(rows[0])
	inputs := make([]ClientInput, 0, len(rows)-1)
	for _, cells := range rows[1:] {
		if rowIsBlank(cells) {
			continue
		}
		r := &rowReader{header: header, cells: cells}
		input := ClientInput{
			ClientID:        r.text("clientId"),
			CommissionRate:  r.number("commissionRate"),
			Fee:             r.number("fee"),
			PreviousBalance: r.number("previousBalance"),
			IPRS:            r.boolean("iprs"),
			PRS:             r.boolean("prs"),
			ISAMRA:          r.boolean("isamra"),
		}
		if r.err != nil {
			failed = append(failed, BulkResult{ClientID: input.ClientID, Status: BulkStatusFailed, Error: r.err.Error()})
			continue
		}
		for name, dst := range map[string]**string{"name": &input.Name, "type": &input.Type, "clientType": &input.ClientType} {
			if v := r.text(name); v != "" {
				value := v
				*dst = &value
			}
		}
		inputs = append(inputs, input)
	}
	return inputs, failed
}
