package util

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
)

// CurrentFinancialYear returns the April-March financial year containing t
func CurrentFinancialYear(t time.Time) domain.FinancialYear {
	if t.Month() < time.April {
		return domain.NewFinancialYear(t.Year() - 1)
	}
	return domain.NewFinancialYear(t.Year())
}

// ParseFinancialYear parses a financial year given as "2025", "2025-2026" or "2025-26".
// "current" resolves against the clock. An empty string returns nil so callers fall
// back to the configured year.
func ParseFinancialYear(raw string) (*domain.FinancialYear, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.EqualFold(raw, "current") {
		fy := CurrentFinancialYear(time.Now())
		return &fy, nil
	}

	startPart, endPart, hasEnd := strings.Cut(raw, "-")
	start, err := strconv.Atoi(startPart)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFinancialYear, raw)
	}
	fy := domain.NewFinancialYear(start)

	if hasEnd {
		end, err := strconv.Atoi(endPart)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFinancialYear, raw)
		}
		if len(endPart) == 2 {
			end += start / 100 * 100
			if end < start {
				end += 100
			}
		}
		if end != fy.EndYear {
			return nil, fmt.Errorf("%w: %q does not span consecutive years", domain.ErrInvalidFinancialYear, raw)
		}
	}

	if err := fy.Validate(); err != nil {
		return nil, err
	}
	return &fy, nil
}
