package domain

import (
	"context"
	"encoding/json"
	"time"
)

// Setting keys
const (
	SettingFinancialYear = "financialYear"
	SettingGBPToINRRate  = "gbpToInrRate"
	SettingUSDToINRRate  = "usdToInrRate"
	SettingGSTRate       = "gstRate"
)

// Setting is a key/value configuration record stored alongside the ledger
type Setting struct {
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	Description string          `json:"description,omitempty"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// DefaultSetting describes a setting created on first read or on initialize
type DefaultSetting struct {
	Key         string
	Value       any
	Description string
}

// DefaultSettings are the values a fresh installation starts with
var DefaultSettings = []DefaultSetting{
	{Key: SettingFinancialYear, Value: NewFinancialYear(2025), Description: "Current financial year settings"},
	{Key: SettingGBPToINRRate, Value: 110.50, Description: "GBP to INR exchange rate"},
	{Key: SettingUSDToINRRate, Value: 83.50, Description: "USD to INR exchange rate"},
	{Key: SettingGSTRate, Value: DefaultGSTRate, Description: "GST rate (percent)"},
}

// FindDefaultSetting looks up the default for key
func FindDefaultSetting(key string) (DefaultSetting, bool) {
	for _, d := range DefaultSettings {
		if d.Key == key {
			return d, true
		}
	}
	return DefaultSetting{}, false
}

// SettingsRepository persists settings
type SettingsRepository interface {
	Get(ctx context.Context, key string) (*Setting, error)
	List(ctx context.Context) ([]*Setting, error)
	Upsert(ctx context.Context, setting *Setting) (*Setting, error)
	// InsertIfMissing stores setting only when no value exists for its key
	InsertIfMissing(ctx context.Context, setting *Setting) error
}
