package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/rs/zerolog/log"
)

// SettingsService handles ledger-wide settings such as the current financial year
type SettingsService struct {
	settingsRepo domain.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settingsRepo domain.SettingsRepository) *SettingsService {
	return &SettingsService{settingsRepo: settingsRepo}
}

// List returns every stored setting
func (s *SettingsService) List(ctx context.Context) ([]*domain.Setting, error) {
	return s.settingsRepo.List(ctx)
}

// Get returns a setting. A known key that was never stored is created from its default.
func (s *SettingsService) Get(ctx context.Context, key string) (*domain.Setting, error) {
	setting, err := s.settingsRepo.Get(ctx, key)
	if err == nil {
		return setting, nil
	}
	if !errors.Is(err, domain.ErrSettingNotFound) {
		return nil, err
	}

	def, ok := domain.FindDefaultSetting(key)
	if !ok {
		return nil, domain.ErrSettingNotFound
	}
	setting, err = defaultToSetting(def)
	if err != nil {
		return nil, err
	}
	if err := s.settingsRepo.InsertIfMissing(ctx, setting); err != nil {
		return nil, err
	}
	return s.settingsRepo.Get(ctx, key)
}

// Set validates and stores a setting value
func (s *SettingsService) Set(ctx context.Context, key string, value json.RawMessage, description string) (*domain.Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" || len(value) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := validateSettingValue(key, value); err != nil {
		return nil, err
	}
	if description == "" {
		if def, ok := domain.FindDefaultSetting(key); ok {
			description = def.Description
		}
	}

	setting, err := s.settingsRepo.Upsert(ctx, &domain.Setting{
		Key:         key,
		Value:       value,
		Description: description,
	})
	if err != nil {
		return nil, err
	}
	log.Info().Str("key", key).RawJSON("value", value).Msg("Setting updated")
	return setting, nil
}

// Initialize stores every default setting that does not exist yet
func (s *SettingsService) Initialize(ctx context.Context) ([]*domain.Setting, error) {
	for _, def := range domain.DefaultSettings {
		setting, err := defaultToSetting(def)
		if err != nil {
			return nil, err
		}
		if err := s.settingsRepo.InsertIfMissing(ctx, setting); err != nil {
			return nil, fmt.Errorf("initialize %s: %w", def.Key, err)
		}
	}
	return s.settingsRepo.List(ctx)
}

// FinancialYear returns the configured current financial year
func (s *SettingsService) FinancialYear(ctx context.Context) (domain.FinancialYear, error) {
	setting, err := s.Get(ctx, domain.SettingFinancialYear)
	if err != nil {
		return domain.FinancialYear{}, err
	}
	var fy domain.FinancialYear
	if err := json.Unmarshal(setting.Value, &fy); err != nil {
		return domain.FinancialYear{}, fmt.Errorf("decode financial year: %w", err)
	}
	if fy.EndYear == 0 {
		fy.EndYear = fy.StartYear + 1
	}
	if err := fy.Validate(); err != nil {
		return domain.FinancialYear{}, err
	}
	return fy, nil
}

// SetFinancialYear switches the ledger to the financial year starting in April of startYear
func (s *SettingsService) SetFinancialYear(ctx context.Context, startYear int) (domain.FinancialYear, error) {
	fy := domain.NewFinancialYear(startYear)
	if err := fy.Validate(); err != nil {
		return domain.FinancialYear{}, err
	}
	raw, err := json.Marshal(fy)
	if err != nil {
		return domain.FinancialYear{}, err
	}
	if _, err := s.Set(ctx, domain.SettingFinancialYear, raw, ""); err != nil {
		return domain.FinancialYear{}, err
	}
	return fy, nil
}

// SetRate stores one of the numeric rate settings (exchange rates, GST)
func (s *SettingsService) SetRate(ctx context.Context, key string, rate float64) (*domain.Setting, error) {
	raw, err := json.Marshal(rate)
	if err != nil {
		return nil, domain.ErrInvalidSettingValue
	}
	return s.Set(ctx, key, raw, "")
}

// Rate returns a numeric setting
func (s *SettingsService) Rate(ctx context.Context, key string) (float64, error) {
	setting, err := s.Get(ctx, key)
	if err != nil {
		return 0, err
	}
	var rate float64
	if err := json.Unmarshal(setting.Value, &rate); err != nil {
		return 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return rate, nil
}

func defaultToSetting(def domain.DefaultSetting) (*domain.Setting, error) {
	raw, err := json.Marshal(def.Value)
	if err != nil {
		return nil, fmt.Errorf("encode default %s: %w", def.Key, err)
	}
	return &domain.Setting{Key: def.Key, Value: raw, Description: def.Description}, nil
}

func validateSettingValue(key string, value json.RawMessage) error {
	switch key {
	case domain.SettingFinancialYear:
		var fy domain.FinancialYear
		if err := json.Unmarshal(value, &fy); err != nil {
			return domain.ErrInvalidSettingValue
		}
		if fy.Validate() != nil {
			return domain.ErrInvalidFinancialYear
		}
	case domain.SettingGBPToINRRate, domain.SettingUSDToINRRate:
		var rate float64
		if err := json.Unmarshal(value, &rate); err != nil || rate <= 0 {
			return domain.ErrInvalidSettingValue
		}
	case domain.SettingGSTRate:
		var rate float64
		if err := json.Unmarshal(value, &rate); err != nil || rate < 0 || rate > 100 {
			return domain.ErrInvalidSettingValue
		}
	default:
		if !json.Valid(value) {
			return domain.ErrInvalidSettingValue
		}
	}
	return nil
}
