package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// schema is applied in order at startup. Every statement must be idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		client_id        VARCHAR(50) PRIMARY KEY,
		name             VARCHAR(255) NOT NULL,
		type             VARCHAR(100) NOT NULL DEFAULT '',
		client_type      VARCHAR(100) NOT NULL DEFAULT 'Other',
		commission_rate  DOUBLE PRECISION NOT NULL DEFAULT 0,
		fee              DOUBLE PRECISION NOT NULL DEFAULT 0,
		previous_balance DOUBLE PRECISION NOT NULL DEFAULT 0,
		iprs             BOOLEAN NOT NULL DEFAULT FALSE,
		prs              BOOLEAN NOT NULL DEFAULT FALSE,
		isamra           BOOLEAN NOT NULL DEFAULT FALSE,
		is_active        BOOLEAN NOT NULL DEFAULT TRUE,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_active ON clients (is_active)`,

	`CREATE TABLE IF NOT EXISTS royalty_entries (
		id                                 BIGSERIAL PRIMARY KEY,
		client_id                          VARCHAR(50) NOT NULL,
		client_name                        VARCHAR(255) NOT NULL DEFAULT '',
		month                              VARCHAR(3) NOT NULL,
		year                               INTEGER NOT NULL,
		status                             VARCHAR(20) NOT NULL DEFAULT 'draft',
		royalty_type                       VARCHAR(100) NOT NULL DEFAULT 'IPRS + PRS',
		commission_rate                    DOUBLE PRECISION NOT NULL DEFAULT 0,
		gst_rate                           DOUBLE PRECISION NOT NULL DEFAULT 18,
		iprs_amount                        DOUBLE PRECISION NOT NULL DEFAULT 0,
		prs_gbp                            DOUBLE PRECISION NOT NULL DEFAULT 0,
		gbp_to_inr_rate                    DOUBLE PRECISION NOT NULL DEFAULT 0,
		prs_amount                         DOUBLE PRECISION NOT NULL DEFAULT 0,
		sound_exchange_amount              DOUBLE PRECISION NOT NULL DEFAULT 0,
		isamra_amount                      DOUBLE PRECISION NOT NULL DEFAULT 0,
		ascap_amount                       DOUBLE PRECISION NOT NULL DEFAULT 0,
		ppl_amount                         DOUBLE PRECISION NOT NULL DEFAULT 0,
		current_month_gst_base             DOUBLE PRECISION NOT NULL DEFAULT 0,
		previous_outstanding_gst_base      DOUBLE PRECISION NOT NULL DEFAULT 0,
		current_month_receipt              DOUBLE PRECISION NOT NULL DEFAULT 0,
		current_month_tds                  DOUBLE PRECISION NOT NULL DEFAULT 0,
		previous_month_receipt             DOUBLE PRECISION NOT NULL DEFAULT 0,
		previous_month_tds                 DOUBLE PRECISION NOT NULL DEFAULT 0,
		previous_month_outstanding         DOUBLE PRECISION NOT NULL DEFAULT 0,
		iprs_commission                    DOUBLE PRECISION NOT NULL DEFAULT 0,
		prs_commission                     DOUBLE PRECISION NOT NULL DEFAULT 0,
		sound_exchange_commission          DOUBLE PRECISION NOT NULL DEFAULT 0,
		isamra_commission                  DOUBLE PRECISION NOT NULL DEFAULT 0,
		ascap_commission                   DOUBLE PRECISION NOT NULL DEFAULT 0,
		ppl_commission                     DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_commission                   DOUBLE PRECISION NOT NULL DEFAULT 0,
		current_month_gst                  DOUBLE PRECISION NOT NULL DEFAULT 0,
		current_month_invoice_total        DOUBLE PRECISION NOT NULL DEFAULT 0,
		previous_outstanding_gst           DOUBLE PRECISION NOT NULL DEFAULT 0,
		previous_outstanding_invoice_total DOUBLE PRECISION NOT NULL DEFAULT 0,
		invoice_pending_current_month      DOUBLE PRECISION NOT NULL DEFAULT 0,
		previous_invoice_pending           DOUBLE PRECISION NOT NULL DEFAULT 0,
		monthly_outstanding                DOUBLE PRECISION NOT NULL DEFAULT 0,
		total_outstanding                  DOUBLE PRECISION NOT NULL DEFAULT 0,
		created_at                         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at                         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT royalty_entries_client_month_year UNIQUE (client_id, month, year),
		CONSTRAINT royalty_entries_status CHECK (status IN ('draft', 'submitted'))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_royalty_entries_client ON royalty_entries (client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_royalty_entries_year ON royalty_entries (year)`,

	`CREATE TABLE IF NOT EXISTS settings (
		key         VARCHAR(100) PRIMARY KEY,
		value       JSONB NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate applies the schema statements in order
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	log.Info().Int("statements", len(schema)).Msg("Database schema ready")
	return nil
}
