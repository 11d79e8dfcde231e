package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kislikjeka/walletscope/internal/platform/session"
)

// AccountRepository implements the login account log using PostgreSQL
type AccountRepository struct {
	pool *pgxpool.Pool
}

var (
	_ session.AccountRecorder = (*AccountRepository)(nil)
	_ session.AccountReader   = (*AccountRepository)(nil)
)

// NewAccountRepository creates a new PostgreSQL account repository
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// RecordLogin inserts the wallet on first login and bumps the counter afterwards.
// Logins may arrive out of order: the method follows the latest login_at and
// first_seen_at keeps the earliest.
func (r *AccountRepository) RecordLogin(ctx context.Context, address string, method session.Method, at time.Time) error {
	query := `
		INSERT INTO wallet_accounts (address, last_login_method, login_count, first_seen_at, last_login_at)
		VALUES ($1, $2, 1, $3, $3)
		ON CONFLICT (address) DO UPDATE SET
			last_login_method = CASE
				WHEN EXCLUDED.last_login_at >= wallet_accounts.last_login_at THEN EXCLUDED.last_login_method
				ELSE wallet_accounts.last_login_method
			END,
			login_count       = wallet_accounts.login_count + 1,
			first_seen_at     = LEAST(wallet_accounts.first_seen_at, EXCLUDED.first_seen_at),
			last_login_at     = GREATEST(wallet_accounts.last_login_at, EXCLUDED.last_login_at)
	`

	if _, err := r.pool.Exec(ctx, query, address, string(method), at.UTC()); err != nil {
		return fmt.Errorf("failed to record login: %w", err)
	}
	return nil
}

// GetAccount retrieves the log entry of a wallet
func (r *AccountRepository) GetAccount(ctx context.Context, address string) (*session.Account, error) {
	query := `
		SELECT address, last_login_method, login_count, first_seen_at, last_login_at
		FROM wallet_accounts
		WHERE address = $1
	`

	var a session.Account
	var method string
	err := r.pool.QueryRow(ctx, query, address).Scan(
		&a.Address,
		&method,
		&a.LoginCount,
		&a.FirstSeenAt,
		&a.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, session.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	a.LastLoginMethod = session.Method(method)

	return &a, nil
}
