package domain

import (
	"fmt"
	"strings"
)

// Month is a financial-year month symbol (apr..mar)
type Month string

const (
	MonthApr Month = "apr"
	MonthMay Month = "may"
	MonthJun Month = "jun"
	MonthJul Month = "jul"
	MonthAug Month = "aug"
	MonthSep Month = "sep"
	MonthOct Month = "oct"
	MonthNov Month = "nov"
	MonthDec Month = "dec"
	MonthJan Month = "jan"
	MonthFeb Month = "feb"
	MonthMar Month = "mar"
)

// MonthsPerYear is the number of months in a financial year
const MonthsPerYear = 12

// MonthOrder is the canonical financial-year order, index 0..11
var MonthOrder = [MonthsPerYear]Month{
	MonthApr, MonthMay, MonthJun, MonthJul, MonthAug, MonthSep,
	MonthOct, MonthNov, MonthDec, MonthJan, MonthFeb, MonthMar,
}

var monthLabels = map[Month]string{
	MonthApr: "April", MonthMay: "May", MonthJun: "June", MonthJul: "July",
	MonthAug: "August", MonthSep: "September", MonthOct: "October", MonthNov: "November",
	MonthDec: "December", MonthJan: "January", MonthFeb: "February", MonthMar: "March",
}

// ParseMonth parses a month symbol, case-insensitively
func ParseMonth(s string) (Month, error) {
	m := Month(strings.ToLower(strings.TrimSpace(s)))
	if m.Index() < 0 {
		return "", ErrInvalidMonth
	}
	return m, nil
}

// Index returns the month's position in MonthOrder, or -1 if it is not a valid month
func (m Month) Index() int {
	for i, candidate := range MonthOrder {
		if candidate == m {
			return i
		}
	}
	return -1
}

// IsValid reports whether m is one of the twelve month symbols
func (m Month) IsValid() bool {
	return m.Index() >= 0
}

// Label returns the full English month name
func (m Month) Label() string {
	return monthLabels[m]
}

// Previous returns the month before m within the financial year.
// ok is false for April, which has no predecessor in the same year.
func (m Month) Previous() (Month, bool) {
	i := m.Index()
	if i <= 0 {
		return "", false
	}
	return MonthOrder[i-1], true
}

// MonthAt returns the month at index i of MonthOrder
func MonthAt(i int) (Month, bool) {
	if i < 0 || i >= MonthsPerYear {
		return "", false
	}
	return MonthOrder[i], true
}

// FinancialYear is an April..March accounting period
type FinancialYear struct {
	StartYear int `json:"startYear"`
	EndYear   int `json:"endYear"`
}

// NewFinancialYear builds the financial year starting in April of startYear
func NewFinancialYear(startYear int) FinancialYear {
	return FinancialYear{StartYear: startYear, EndYear: startYear + 1}
}

// FinancialYearOf returns the financial year a calendar (month, year) pair belongs to
func FinancialYearOf(m Month, year int) FinancialYear {
	switch m {
	case MonthJan, MonthFeb, MonthMar:
		return NewFinancialYear(year - 1)
	default:
		return NewFinancialYear(year)
	}
}

// YearFor resolves the calendar year a month falls in for this financial year.
// Jan, Feb and Mar take the end year; every other month takes the start year.
func (fy FinancialYear) YearFor(m Month) int {
	switch m {
	case MonthJan, MonthFeb, MonthMar:
		return fy.EndYear
	default:
		return fy.StartYear
	}
}

// Contains reports whether (month, year) belongs to this financial year
func (fy FinancialYear) Contains(m Month, year int) bool {
	return m.IsValid() && fy.YearFor(m) == year
}

// Validate checks the year bounds
func (fy FinancialYear) Validate() error {
	if fy.StartYear < 2000 || fy.StartYear > 2100 || fy.EndYear != fy.StartYear+1 {
		return ErrInvalidFinancialYear
	}
	return nil
}

// String renders the year as "FY 2025-2026"
func (fy FinancialYear) String() string {
	return fmt.Sprintf("FY %d-%d", fy.StartYear, fy.EndYear)
}
