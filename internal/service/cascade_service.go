package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/rs/zerolog/log"
)

// CascadeService carries a month's closing outstanding balance forward into
// the opening balance of the later months of the same financial year
type CascadeService struct {
	entryRepo domain.RoyaltyEntryRepository
	metrics   *Metrics
}

// NewCascadeService creates a new CascadeService
func NewCascadeService(entryRepo domain.RoyaltyEntryRepository, metrics *Metrics) *CascadeService {
	return &CascadeService{
		entryRepo: entryRepo,
		metrics:   metrics,
	}
}

// Cascade walks months startIdx..mar of fy for one client. Every stored entry whose
// previousMonthOutstanding differs from its predecessor's totalOutstanding (0 when the
// predecessor is missing) is updated, recomputed and persisted before the next month
// is read. Missing months are skipped. Entries already in agreement are left untouched.
//
// The modified entries are returned in month order. If persisting fails the walk stops;
// the entries written so far are returned along with the error.
// Callers must hold the client's lock.
func (s *CascadeService) Cascade(ctx context.Context, clientID string, startIdx int, fy domain.FinancialYear) ([]*domain.RoyaltyEntry, error) {
	if startIdx < 0 {
		startIdx = 0
	}

	started := time.Now()
	modified := make([]*domain.RoyaltyEntry, 0)

	fail := func(err error) ([]*domain.RoyaltyEntry, error) {
		s.metrics.cascadeObserved(time.Since(started).Seconds(), len(modified), true)
		log.Error().
			Err(err).
			Str("client_id", clientID).
			Int("cascaded", len(modified)).
			Msg("Cascade halted")
		return modified, err
	}

	// predecessor of the month being visited; loaded lazily for the first index
	var prev *domain.RoyaltyEntry
	prevLoaded := false

	for i := startIdx; i < domain.MonthsPerYear; i++ {
		month := domain.MonthOrder[i]
		year := fy.YearFor(month)

		if !prevLoaded {
			p, err := s.loadPredecessor(ctx, clientID, i, fy)
			if err != nil {
				return fail(err)
			}
			prev, prevLoaded = p, true
		}

		entry, err := s.entryRepo.GetByKey(ctx, clientID, month, year)
		if errors.Is(err, domain.ErrEntryNotFound) {
			prev = nil
			continue
		}
		if err != nil {
			return fail(fmt.Errorf("load %s %d: %w", month, year, err))
		}

		expected := 0.0
		if prev != nil {
			expected = Round2(prev.TotalOutstanding)
		}

		if entry.PreviousMonthOutstanding == expected {
			prev = entry
			continue
		}

		old := entry.PreviousMonthOutstanding
		entry.PreviousMonthOutstanding = expected
		Recompute(entry)

		saved, err := s.entryRepo.Upsert(ctx, entry)
		if err != nil {
			return fail(fmt.Errorf("persist %s %d: %w", month, year, err))
		}

		log.Info().
			Str("client_id", clientID).
			Str("month", string(month)).
			Int("year", year).
			Float64("old_opening", old).
			Float64("new_opening", expected).
			Float64("total_outstanding", saved.TotalOutstanding).
			Msg("Carried outstanding balance forward")

		modified = append(modified, saved)
		prev = saved
	}

	s.metrics.cascadeObserved(time.Since(started).Seconds(), len(modified), false)
	return modified, nil
}

// PreviousOutstanding returns the predecessor's rounded totalOutstanding for month in fy.
// April and months whose predecessor is missing return 0.
func (s *CascadeService) PreviousOutstanding(ctx context.Context, clientID string, month domain.Month, fy domain.FinancialYear) (float64, error) {
	idx := month.Index()
	if idx < 0 {
		return 0, domain.ErrInvalidMonth
	}
	prev, err := s.loadPredecessor(ctx, clientID, idx, fy)
	if err != nil {
		return 0, err
	}
	if prev == nil {
		return 0, nil
	}
	return Round2(prev.TotalOutstanding), nil
}

// loadPredecessor returns the stored entry for the month before idx, or nil
func (s *CascadeService) loadPredecessor(ctx context.Context, clientID string, idx int, fy domain.FinancialYear) (*domain.RoyaltyEntry, error) {
	if idx <= 0 {
		return nil, nil
	}
	month := domain.MonthOrder[idx-1]
	year := fy.YearFor(month)
	prev, err := s.entryRepo.GetByKey(ctx, clientID, month, year)
	if errors.Is(err, domain.ErrEntryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load %s %d: %w", month, year, err)
	}
	return prev, nil
}
