package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	tests := []struct {
		in      string
		want    Month
		wantErr bool
	}{
		{"apr", MonthApr, false},
		{" MAR ", MonthMar, false},
		{"Jan", MonthJan, false},
		{"april", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMonth(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMonth)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMonth_OrderAndPrevious(t *testing.T) {
	assert.Equal(t, 0, MonthApr.Index())
	assert.Equal(t, 11, MonthMar.Index())
	assert.Equal(t, -1, Month("smarch").Index())

	_, ok := MonthApr.Previous()
	assert.False(t, ok)

	prev, ok := MonthJan.Previous()
	require.True(t, ok)
	assert.Equal(t, MonthDec, prev)

	m, ok := MonthAt(3)
	require.True(t, ok)
	assert.Equal(t, MonthJul, m)
	_, ok = MonthAt(12)
	assert.False(t, ok)

	assert.Equal(t, "September", MonthSep.Label())
}

func TestFinancialYear_YearFor(t *testing.T) {
	fy := NewFinancialYear(2025)

	assert.Equal(t, 2025, fy.YearFor(MonthApr))
	assert.Equal(t, 2025, fy.YearFor(MonthDec))
	assert.Equal(t, 2026, fy.YearFor(MonthJan))
	assert.Equal(t, 2026, fy.YearFor(MonthMar))

	assert.True(t, fy.Contains(MonthFeb, 2026))
	assert.False(t, fy.Contains(MonthFeb, 2025))
	assert.False(t, fy.Contains("smarch", 2025))
}

func TestFinancialYearOf(t *testing.T) {
	assert.Equal(t, NewFinancialYear(2024), FinancialYearOf(MonthMar, 2025))
	assert.Equal(t, NewFinancialYear(2025), FinancialYearOf(MonthApr, 2025))
}

func TestFinancialYear_Validate(t *testing.T) {
	assert.NoError(t, NewFinancialYear(2025).Validate())
	assert.ErrorIs(t, NewFinancialYear(1999).Validate(), ErrInvalidFinancialYear)
	assert.ErrorIs(t, FinancialYear{StartYear: 2025, EndYear: 2027}.Validate(), ErrInvalidFinancialYear)
	assert.Equal(t, "FY 2025-2026", NewFinancialYear(2025).String())
}
