package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/mrmbilling/royalty-ledger/internal/websocket"
	"github.com/rs/zerolog/log"
)

// RoyaltyService handles saving monthly entries and keeping the client's year consistent
type RoyaltyService struct {
	entryRepo      domain.RoyaltyEntryRepository
	clientRepo     domain.ClientRepository
	settings       *SettingsService
	cascade        *CascadeService
	locker         ClientLocker
	metrics        *Metrics
	eventPublisher websocket.EventPublisher
}

// NewRoyaltyService creates a new RoyaltyService
func NewRoyaltyService(
	entryRepo domain.RoyaltyEntryRepository,
	clientRepo domain.ClientRepository,
	settings *SettingsService,
	cascade *CascadeService,
	locker ClientLocker,
	metrics *Metrics,
) *RoyaltyService {
	if locker == nil {
		locker = NewLocalClientLocker()
	}
	return &RoyaltyService{
		entryRepo:  entryRepo,
		clientRepo: clientRepo,
		settings:   settings,
		cascade:    cascade,
		locker:     locker,
		metrics:    metrics,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *RoyaltyService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *RoyaltyService) publishEvent(clientID string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(clientID, event)
	}
}

// SaveEntryInput holds the input for creating or updating one month of a client.
// CommissionRate, GSTRate and PreviousMonthOutstanding inside Inputs are ignored;
// the pointer fields carry them so that "not sent" can be told apart from zero.
type SaveEntryInput struct {
	ClientID      string
	Month         domain.Month
	FinancialYear *domain.FinancialYear
	Status        domain.EntryStatus
	Inputs        domain.EntryInputs

	// nil uses the client's rate
	CommissionRate *float64
	// nil or 0 uses DefaultGSTRate
	GSTRate *float64
	// nil or 0 carries the previous month's totalOutstanding (client.previousBalance for April)
	PreviousMonthOutstanding *float64
}

// SaveResult is the outcome of a save
type SaveResult struct {
	Entry    *domain.RoyaltyEntry   `json:"entry"`
	Cascaded []*domain.RoyaltyEntry `json:"cascadedEntries"`
	Warnings []string               `json:"warnings"`
}

// Save validates, computes and persists one monthly entry, then cascades its closing
// balance into the later months of the financial year. Saves for the same client are
// serialized.
//
// If the cascade fails part way the saved entry and the months already cascaded are
// returned together with the error.
func (s *RoyaltyService) Save(ctx context.Context, input SaveEntryInput) (*SaveResult, error) {
	clientID := strings.TrimSpace(input.ClientID)
	if clientID == "" {
		return nil, domain.ErrClientIDRequired
	}
	if input.Month == "" {
		return nil, domain.ErrMonthRequired
	}
	month, err := domain.ParseMonth(string(input.Month))
	if err != nil {
		return nil, err
	}
	if input.Status != "" && !input.Status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	if err := validateInputs(input); err != nil {
		return nil, err
	}

	fy, err := s.resolveFinancialYear(ctx, input.FinancialYear)
	if err != nil {
		return nil, err
	}

	client, err := s.activeClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, clientID)
	if err != nil {
		s.metrics.entrySaved("busy")
		return nil, err
	}
	defer unlock()

	year := fy.YearFor(month)
	existing, err := s.entryRepo.GetByKey(ctx, clientID, month, year)
	if err != nil && !errors.Is(err, domain.ErrEntryNotFound) {
		s.metrics.entrySaved("error")
		return nil, err
	}

	entry := &domain.RoyaltyEntry{
		ClientID:    clientID,
		ClientName:  client.Name,
		Month:       month,
		Year:        year,
		Status:      domain.EntryStatusDraft,
		EntryInputs: input.Inputs.Normalize(),
	}
	if existing != nil {
		entry.ID = existing.ID
		entry.Status = existing.Status
		entry.CreatedAt = existing.CreatedAt
	}
	if input.Status != "" {
		entry.Status = input.Status
	}

	entry.RoyaltyType = strings.TrimSpace(entry.RoyaltyType)
	if entry.RoyaltyType == "" {
		entry.RoyaltyType = domain.DefaultRoyaltyType
	}
	entry.CommissionRate = client.CommissionRate
	if input.CommissionRate != nil {
		entry.CommissionRate = *input.CommissionRate
	}
	entry.GSTRate = domain.DefaultGSTRate
	if input.GSTRate != nil && *input.GSTRate != 0 {
		entry.GSTRate = *input.GSTRate
	}

	expected, err := s.expectedOpening(ctx, client, month, fy)
	if err != nil {
		s.metrics.entrySaved("error")
		return nil, err
	}

	var warnings []string
	entry.PreviousMonthOutstanding = expected
	if input.PreviousMonthOutstanding != nil && *input.PreviousMonthOutstanding != 0 {
		explicit := Round2(*input.PreviousMonthOutstanding)
		entry.PreviousMonthOutstanding = explicit
		if explicit != expected {
			msg := fmt.Sprintf("previousMonthOutstanding %.2f differs from the carried balance %.2f", explicit, expected)
			warnings = append(warnings, msg)
			s.metrics.chainWarning()
			log.Warn().
				Str("client_id", clientID).
				Str("month", string(month)).
				Int("year", year).
				Float64("explicit", explicit).
				Float64("carried", expected).
				Msg("Opening balance overridden")
		}
	}

	Recompute(entry)

	saved, err := s.entryRepo.Upsert(ctx, entry)
	if err != nil {
		s.metrics.entrySaved("error")
		return nil, err
	}

	if saved.CommissionRate != client.CommissionRate {
		s.writeBackCommissionRate(ctx, client, saved.CommissionRate)
	}

	result := &SaveResult{Entry: saved, Cascaded: []*domain.RoyaltyEntry{}, Warnings: warnings}
	s.publishEvent(clientID, websocket.RoyaltyEntrySaved(saved))

	cascaded, cascadeErr := s.cascade.Cascade(ctx, clientID, month.Index()+1, fy)
	result.Cascaded = cascaded
	if len(cascaded) > 0 {
		s.publishEvent(clientID, websocket.RoyaltyEntryCascaded(cascaded))
	}
	if cascadeErr != nil {
		s.metrics.entrySaved("cascade_failed")
		return result, fmt.Errorf("cascade after %s %d: %w", month, year, cascadeErr)
	}

	s.metrics.entrySaved("ok")
	log.Info().
		Str("client_id", clientID).
		Str("month", string(month)).
		Int("year", year).
		Float64("total_outstanding", saved.TotalOutstanding).
		Int("cascaded", len(cascaded)).
		Msg("Royalty entry saved")

	return result, nil
}

// Get returns one monthly entry
func (s *RoyaltyService) Get(ctx context.Context, clientID string, month domain.Month, fy *domain.FinancialYear) (*domain.RoyaltyEntry, error) {
	m, err := domain.ParseMonth(string(month))
	if err != nil {
		return nil, err
	}
	year, err := s.resolveFinancialYear(ctx, fy)
	if err != nil {
		return nil, err
	}
	return s.entryRepo.GetByKey(ctx, clientID, m, year.YearFor(m))
}

// List returns entries matching the filter. A filter without a financial year uses the configured one.
func (s *RoyaltyService) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.RoyaltyEntry, error) {
	if filter.Month != "" {
		m, err := domain.ParseMonth(string(filter.Month))
		if err != nil {
			return nil, err
		}
		filter.Month = m
	}
	fy, err := s.resolveFinancialYear(ctx, filter.FinancialYear)
	if err != nil {
		return nil, err
	}
	filter.FinancialYear = &fy
	return s.entryRepo.List(ctx, filter)
}

// Delete removes one monthly entry. Later months keep their stored opening balance
// until the client is next saved or recalculated.
func (s *RoyaltyService) Delete(ctx context.Context, clientID string, month domain.Month, fy *domain.FinancialYear) error {
	m, err := domain.ParseMonth(string(month))
	if err != nil {
		return err
	}
	year, err := s.resolveFinancialYear(ctx, fy)
	if err != nil {
		return err
	}

	unlock, err := s.locker.Lock(ctx, clientID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.entryRepo.Delete(ctx, clientID, m, year.YearFor(m)); err != nil {
		return err
	}

	s.publishEvent(clientID, websocket.RoyaltyEntryDeleted(map[string]interface{}{
		"clientId": clientID,
		"month":    m,
		"year":     year.YearFor(m),
	}))
	return nil
}

// UpdateStatus moves an entry between draft and submitted
func (s *RoyaltyService) UpdateStatus(ctx context.Context, clientID string, month domain.Month, fy *domain.FinancialYear, status domain.EntryStatus) (*domain.RoyaltyEntry, error) {
	if !status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	m, err := domain.ParseMonth(string(month))
	if err != nil {
		return nil, err
	}
	year, err := s.resolveFinancialYear(ctx, fy)
	if err != nil {
		return nil, err
	}

	entry, err := s.entryRepo.UpdateStatus(ctx, clientID, m, year.YearFor(m), status)
	if err != nil {
		return nil, err
	}
	s.publishEvent(clientID, websocket.RoyaltyEntryStatusChanged(entry))
	return entry, nil
}

// PreviousOutstanding returns the balance a new entry for month would open with
func (s *RoyaltyService) PreviousOutstanding(ctx context.Context, clientID string, month domain.Month, fy *domain.FinancialYear) (float64, error) {
	m, err := domain.ParseMonth(string(month))
	if err != nil {
		return 0, err
	}
	year, err := s.resolveFinancialYear(ctx, fy)
	if err != nil {
		return 0, err
	}
	return s.cascade.PreviousOutstanding(ctx, clientID, m, year)
}

// RecalculateResult summarizes a repair run for one client
type RecalculateResult struct {
	ClientID   string                 `json:"clientId"`
	Recomputed int                    `json:"recomputed"`
	Cascaded   []*domain.RoyaltyEntry `json:"cascadedEntries"`
}

// RecalculateClient recomputes every stored entry of the client in fy and then cascades from May
func (s *RoyaltyService) RecalculateClient(ctx context.Context, clientID string, fy *domain.FinancialYear) (*RecalculateResult, error) {
	year, err := s.resolveFinancialYear(ctx, fy)
	if err != nil {
		return nil, err
	}
	if _, err := s.clientRepo.GetByID(ctx, clientID); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, clientID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	entries, err := s.entryRepo.List(ctx, domain.EntryFilter{ClientID: clientID, FinancialYear: &year})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Month.Index() < entries[j].Month.Index() })

	result := &RecalculateResult{ClientID: clientID, Cascaded: []*domain.RoyaltyEntry{}}
	for _, entry := range entries {
		before := entry.EntryComputed
		Recompute(entry)
		if entry.EntryComputed == before {
			continue
		}
		if _, err := s.entryRepo.Upsert(ctx, entry); err != nil {
			return result, fmt.Errorf("persist %s %d: %w", entry.Month, entry.Year, err)
		}
		result.Recomputed++
	}

	cascaded, err := s.cascade.Cascade(ctx, clientID, 1, year)
	result.Cascaded = cascaded
	if err != nil {
		return result, err
	}

	if result.Recomputed > 0 || len(cascaded) > 0 {
		s.publishEvent(clientID, websocket.RoyaltyEntryCascaded(cascaded))
	}
	log.Info().
		Str("client_id", clientID).
		Str("financial_year", year.String()).
		Int("recomputed", result.Recomputed).
		Int("cascaded", len(cascaded)).
		Msg("Client recalculated")

	return result, nil
}

// RecalculateAll runs RecalculateClient for every client, active or not.
// A failing client is logged and skipped.
func (s *RoyaltyService) RecalculateAll(ctx context.Context, fy *domain.FinancialYear) ([]*RecalculateResult, error) {
	clients, err := s.clientRepo.List(ctx, domain.ClientFilter{IncludeInactive: true})
	if err != nil {
		return nil, err
	}
	results := make([]*RecalculateResult, 0, len(clients))
	for _, c := range clients {
		res, err := s.RecalculateClient(ctx, c.ClientID, fy)
		if err != nil {
			log.Error().Err(err).Str("client_id", c.ClientID).Msg("Recalculate failed")
			continue
		}
		results = append(results, res)
	}
	return results, nil
}

// Preview runs the calculation engine on unsaved inputs. A zero GST rate is defaulted.
func (s *RoyaltyService) Preview(in domain.EntryInputs) domain.EntryComputed {
	in = in.Normalize()
	if in.GSTRate == 0 {
		in.GSTRate = domain.DefaultGSTRate
	}
	return ComputeEntry(in)
}

func (s *RoyaltyService) resolveFinancialYear(ctx context.Context, fy *domain.FinancialYear) (domain.FinancialYear, error) {
	if fy != nil {
		if err := fy.Validate(); err != nil {
			return domain.FinancialYear{}, err
		}
		return *fy, nil
	}
	return s.settings.FinancialYear(ctx)
}

func (s *RoyaltyService) activeClient(ctx context.Context, clientID string) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if !client.IsActive {
		return nil, domain.ErrClientNotFound
	}
	return client, nil
}

// expectedOpening is the balance month opens with when nothing is overridden
func (s *RoyaltyService) expectedOpening(ctx context.Context, client *domain.Client, month domain.Month, fy domain.FinancialYear) (float64, error) {
	if month == domain.MonthApr {
		return Round2(client.PreviousBalance), nil
	}
	return s.cascade.PreviousOutstanding(ctx, client.ClientID, month, fy)
}

func (s *RoyaltyService) writeBackCommissionRate(ctx context.Context, client *domain.Client, rate float64) {
	updated := *client
	updated.SetCommissionRate(rate)
	if _, err := s.clientRepo.Update(ctx, &updated); err != nil {
		log.Warn().Err(err).Str("client_id", client.ClientID).Msg("Failed to update client commission rate")
		return
	}
	log.Info().
		Str("client_id", client.ClientID).
		Float64("old_rate", client.CommissionRate).
		Float64("new_rate", rate).
		Msg("Client commission rate updated from entry")
}

func validateInputs(input SaveEntryInput) error {
	fields := input.Inputs.NonNegativeFields()
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if fields[name] < 0 {
			return fmt.Errorf("%w: %s", domain.ErrNegativeAmount, name)
		}
	}
	if input.CommissionRate != nil && (*input.CommissionRate < 0 || *input.CommissionRate > 100) {
		return fmt.Errorf("%w: commissionRate", domain.ErrInvalidRate)
	}
	if input.GSTRate != nil && (*input.GSTRate < 0 || *input.GSTRate > 100) {
		return fmt.Errorf("%w: gstRate", domain.ErrInvalidRate)
	}
	if len(input.Inputs.RoyaltyType) > domain.MaxRoyaltyTypeLength {
		return domain.ErrNameTooLong
	}
	return nil
}
