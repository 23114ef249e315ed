package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrmbilling/royalty-ledger/internal/domain"
)

// SettingsRepository implements domain.SettingsRepository using PostgreSQL
type SettingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(pool *pgxpool.Pool) *SettingsRepository {
	return &SettingsRepository{pool: pool}
}

func scanSetting(row pgx.Row) (*domain.Setting, error) {
	var s domain.Setting
	var value []byte
	if err := row.Scan(&s.Key, &value, &s.Description, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Value = value
	return &s, nil
}

// Get retrieves one setting
func (r *SettingsRepository) Get(ctx context.Context, key string) (*domain.Setting, error) {
	s, err := scanSetting(r.pool.QueryRow(ctx,
		`SELECT key, value, description, updated_at FROM settings WHERE key = $1`, key))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSettingNotFound
		}
		return nil, err
	}
	return s, nil
}

// List retrieves every setting ordered by key
func (r *SettingsRepository) List(ctx context.Context) ([]*domain.Setting, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value, description, updated_at FROM settings ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Setting, 0)
	for rows.Next() {
		s, err := scanSetting(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// Upsert stores a setting. An empty description keeps the stored one.
func (r *SettingsRepository) Upsert(ctx context.Context, setting *domain.Setting) (*domain.Setting, error) {
	query := `INSERT INTO settings (key, value, description) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			description = COALESCE(NULLIF(EXCLUDED.description, ''), settings.description),
			updated_at = NOW()
		RETURNING key, value, description, updated_at`
	return scanSetting(r.pool.QueryRow(ctx, query, setting.Key, []byte(setting.Value), setting.Description))
}

// InsertIfMissing stores setting only when no value exists for its key
func (r *SettingsRepository) InsertIfMissing(ctx context.Context, setting *domain.Setting) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO settings (key, value, description) VALUES ($1, $2, $3) ON CONFLICT (key) DO NOTHING`,
		setting.Key, []byte(setting.Value), setting.Description)
	return err
}
