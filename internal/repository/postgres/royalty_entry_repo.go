package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrmbilling/royalty-ledger/internal/domain"
)

// RoyaltyEntryRepository implements domain.RoyaltyEntryRepository using PostgreSQL
type RoyaltyEntryRepository struct {
	pool *pgxpool.Pool
}

// NewRoyaltyEntryRepository creates a new RoyaltyEntryRepository
func NewRoyaltyEntryRepository(pool *pgxpool.Pool) *RoyaltyEntryRepository {
	return &RoyaltyEntryRepository{pool: pool}
}

// entryColumns is the column order shared by every SELECT and RETURNING clause
var entryColumns = []string{
	"id", "client_id", "client_name", "month", "year", "status",
	"royalty_type", "commission_rate", "gst_rate",
	"iprs_amount", "prs_gbp", "gbp_to_inr_rate", "prs_amount",
	"sound_exchange_amount", "isamra_amount", "ascap_amount", "ppl_amount",
	"current_month_gst_base", "previous_outstanding_gst_base",
	"current_month_receipt", "current_month_tds", "previous_month_receipt", "previous_month_tds",
	"previous_month_outstanding",
	"iprs_commission", "prs_commission", "sound_exchange_commission",
	"isamra_commission", "ascap_commission", "ppl_commission", "total_commission",
	"current_month_gst", "current_month_invoice_total",
	"previous_outstanding_gst", "previous_outstanding_invoice_total",
	"invoice_pending_current_month", "previous_invoice_pending",
	"monthly_outstanding", "total_outstanding",
	"created_at", "updated_at",
}

var entrySelectList = strings.Join(entryColumns, ", ")

// writable columns, everything except id and the timestamps
var entryWriteColumns = entryColumns[1 : len(entryColumns)-2]

func entryWriteArgs(e *domain.RoyaltyEntry) []any {
	return []any{
		e.ClientID, e.ClientName, string(e.Month), e.Year, string(e.Status),
		e.RoyaltyType, e.CommissionRate, e.GSTRate,
		e.IPRSAmount, e.PRSGBP, e.GBPToINRRate, e.PRSAmount,
		e.SoundExchangeAmount, e.ISAMRAAmount, e.ASCAPAmount, e.PPLAmount,
		e.CurrentMonthGSTBase, e.PreviousOutstandingGSTBase,
		e.CurrentMonthReceipt, e.CurrentMonthTDS, e.PreviousMonthReceipt, e.PreviousMonthTDS,
		e.PreviousMonthOutstanding,
		e.IPRSCommission, e.PRSCommission, e.SoundExchangeCommission,
		e.ISAMRACommission, e.ASCAPCommission, e.PPLCommission, e.TotalCommission,
		e.CurrentMonthGST, e.CurrentMonthInvoiceTotal,
		e.PreviousOutstandingGST, e.PreviousOutstandingInvoiceTotal,
		e.InvoicePendingCurrentMonth, e.PreviousInvoicePending,
		e.MonthlyOutstanding, e.TotalOutstanding,
	}
}

func scanEntry(row pgx.Row) (*domain.RoyaltyEntry, error) {
	var e domain.RoyaltyEntry
	var month, status string
	err := row.Scan(
		&e.ID, &e.ClientID, &e.ClientName, &month, &e.Year, &status,
		&e.RoyaltyType, &e.CommissionRate, &e.GSTRate,
		&e.IPRSAmount, &e.PRSGBP, &e.GBPToINRRate, &e.PRSAmount,
		&e.SoundExchangeAmount, &e.ISAMRAAmount, &e.ASCAPAmount, &e.PPLAmount,
		&e.CurrentMonthGSTBase, &e.PreviousOutstandingGSTBase,
		&e.CurrentMonthReceipt, &e.CurrentMonthTDS, &e.PreviousMonthReceipt, &e.PreviousMonthTDS,
		&e.PreviousMonthOutstanding,
		&e.IPRSCommission, &e.PRSCommission, &e.SoundExchangeCommission,
		&e.ISAMRACommission, &e.ASCAPCommission, &e.PPLCommission, &e.TotalCommission,
		&e.CurrentMonthGST, &e.CurrentMonthInvoiceTotal,
		&e.PreviousOutstandingGST, &e.PreviousOutstandingInvoiceTotal,
		&e.InvoicePendingCurrentMonth, &e.PreviousInvoicePending,
		&e.MonthlyOutstanding, &e.TotalOutstanding,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Month = domain.Month(month)
	e.Status = domain.EntryStatus(status)
	return &e, nil
}

// GetByKey retrieves the entry for a client and calendar month
func (r *RoyaltyEntryRepository) GetByKey(ctx context.Context, clientID string, month domain.Month, year int) (*domain.RoyaltyEntry, error) {
	query := `SELECT ` + entrySelectList + ` FROM royalty_entries WHERE client_id = $1 AND month = $2 AND year = $3`
	e, err := scanEntry(r.pool.QueryRow(ctx, query, clientID, string(month), year))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return e, nil
}

// Upsert inserts the entry or replaces the one stored for (client_id, month, year)
func (r *RoyaltyEntryRepository) Upsert(ctx context.Context, entry *domain.RoyaltyEntry) (*domain.RoyaltyEntry, error) {
	placeholders := make([]string, len(entryWriteColumns))
	updates := make([]string, 0, len(entryWriteColumns))
	for i, col := range entryWriteColumns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		switch col {
		case "client_id", "month", "year":
		default:
			updates = append(updates, col+" = EXCLUDED."+col)
		}
	}
	updates = append(updates, "updated_at = NOW()")

	query := `INSERT INTO royalty_entries (` + strings.Join(entryWriteColumns, ", ") + `)
		VALUES (` + strings.Join(placeholders, ", ") + `)
		ON CONFLICT (client_id, month, year) DO UPDATE SET ` + strings.Join(updates, ", ") + `
		RETURNING ` + entrySelectList

	return scanEntry(r.pool.QueryRow(ctx, query, entryWriteArgs(entry)...))
}

// List retrieves entries matching the filter
func (r *RoyaltyEntryRepository) List(ctx context.Context, filter domain.EntryFilter) ([]*domain.RoyaltyEntry, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.ClientID != "" {
		conds = append(conds, "client_id = "+arg(filter.ClientID))
	}
	if filter.Month != "" {
		conds = append(conds, "month = "+arg(string(filter.Month)))
	}
	if fy := filter.FinancialYear; fy != nil {
		var startMonths, endMonths []string
		for _, m := range domain.MonthOrder {
			if fy.YearFor(m) == fy.StartYear {
				startMonths = append(startMonths, string(m))
			} else {
				endMonths = append(endMonths, string(m))
			}
		}
		conds = append(conds, fmt.Sprintf("((year = %s AND month = ANY(%s)) OR (year = %s AND month = ANY(%s)))",
			arg(fy.StartYear), arg(startMonths), arg(fy.EndYear), arg(endMonths)))
	}

	query := `SELECT ` + entrySelectList + ` FROM royalty_entries`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY client_id, year, month`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.RoyaltyEntry, 0)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// SQL cannot order by financial-year month or by the numeric part of client_id
	domain.SortEntries(result)
	return result, nil
}

// UpdateStatus changes the status of one entry
func (r *RoyaltyEntryRepository) UpdateStatus(ctx context.Context, clientID string, month domain.Month, year int, status domain.EntryStatus) (*domain.RoyaltyEntry, error) {
	query := `UPDATE royalty_entries SET status = $4, updated_at = NOW()
		WHERE client_id = $1 AND month = $2 AND year = $3
		RETURNING ` + entrySelectList
	e, err := scanEntry(r.pool.QueryRow(ctx, query, clientID, string(month), year, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEntryNotFound
		}
		return nil, err
	}
	return e, nil
}

// Delete removes one entry
func (r *RoyaltyEntryRepository) Delete(ctx context.Context, clientID string, month domain.Month, year int) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM royalty_entries WHERE client_id = $1 AND month = $2 AND year = $3`,
		clientID, string(month), year)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrEntryNotFound
	}
	return nil
}

// DeleteByClient removes every entry of a client and returns how many were deleted
func (r *RoyaltyEntryRepository) DeleteByClient(ctx context.Context, clientID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM royalty_entries WHERE client_id = $1`, clientID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// RenameClient rewrites the denormalized client name on a client's entries
func (r *RoyaltyEntryRepository) RenameClient(ctx context.Context, clientID, name string) error {
	_, err := r.pool.Exec(ctx, `UPDATE royalty_entries SET client_name = $2, updated_at = NOW() WHERE client_id = $1`,
		clientID, name)
	return err
}
