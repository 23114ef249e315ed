package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mrmbilling/royalty-ledger/internal/domain"
)

// uniqueViolation is the Postgres SQLSTATE for a duplicate key
const uniqueViolation = "23505"

// ClientRepository implements domain.ClientRepository using PostgreSQL
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

const clientSelectList = `client_id, name, type, client_type, commission_rate, fee, previous_balance,
	iprs, prs, isamra, is_active, created_at, updated_at`

func scanClient(row pgx.Row) (*domain.Client, error) {
	var c domain.Client
	err := row.Scan(
		&c.ClientID, &c.Name, &c.Type, &c.ClientType, &c.CommissionRate, &c.Fee, &c.PreviousBalance,
		&c.IPRS, &c.PRS, &c.ISAMRA, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByID retrieves a client, active or not
func (r *ClientRepository) GetByID(ctx context.Context, clientID string) (*domain.Client, error) {
	c, err := scanClient(r.pool.QueryRow(ctx, `SELECT `+clientSelectList+` FROM clients WHERE client_id = $1`, clientID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return c, nil
}

// List retrieves clients, searching name and client id case-insensitively
func (r *ClientRepository) List(ctx context.Context, filter domain.ClientFilter) ([]*domain.Client, error) {
	query := `SELECT ` + clientSelectList + ` FROM clients
		WHERE ($1::boolean OR is_active)
		  AND ($2::text = '' OR name ILIKE '%' || $2::text || '%' OR client_id ILIKE '%' || $2::text || '%')`

	rows, err := r.pool.Query(ctx, query, filter.IncludeInactive, filter.Search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*domain.Client, 0)
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	domain.SortClients(result)
	return result, nil
}

// Create inserts a new client
func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	query := `INSERT INTO clients (client_id, name, type, client_type, commission_rate, fee, previous_balance,
			iprs, prs, isamra, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + clientSelectList

	c, err := scanClient(r.pool.QueryRow(ctx, query,
		client.ClientID, client.Name, client.Type, client.ClientType, client.CommissionRate, client.Fee,
		client.PreviousBalance, client.IPRS, client.PRS, client.ISAMRA, client.IsActive,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, domain.ErrClientAlreadyExists
		}
		return nil, err
	}
	return c, nil
}

// Update replaces the mutable fields of a client
func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	query := `UPDATE clients SET name = $2, type = $3, client_type = $4, commission_rate = $5, fee = $6,
			previous_balance = $7, iprs = $8, prs = $9, isamra = $10, is_active = $11, updated_at = NOW()
		WHERE client_id = $1
		RETURNING ` + clientSelectList

	c, err := scanClient(r.pool.QueryRow(ctx, query,
		client.ClientID, client.Name, client.Type, client.ClientType, client.CommissionRate, client.Fee,
		client.PreviousBalance, client.IPRS, client.PRS, client.ISAMRA, client.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return c, nil
}

// Delete permanently removes a client
func (r *ClientRepository) Delete(ctx context.Context, clientID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM clients WHERE client_id = $1`, clientID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}
