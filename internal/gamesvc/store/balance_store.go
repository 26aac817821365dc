package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type BalanceStore struct {
	db *pgxpool.Pool
}

func NewBalanceStore(db *pgxpool.Pool) *BalanceStore {
	return &BalanceStore{db: db}
}

func (c *BalanceStore) GetBalanceByUserID(ctx context.Context, userId int64) (decimal.Decimal, error) {
	var totalDr, totalCr decimal.Decimal

	err := c.db.QueryRow(ctx, `
        SELECT
            COALESCE(SUM(dr), 0),
            COALESCE(SUM(cr), 0)
        FROM balances
        WHERE user_id = $1 AND status = 'completed'
    `, userId).Scan(&totalDr, &totalCr)

	if err != nil {
		return decimal.Zero, err
	}

	balance := totalDr.Sub(totalCr)
	return balance, nil
}

// InsertDebit records coins leaving the user (a cr row), e.g. an entry
// stake committed on room join.
func (c *BalanceStore) InsertDebit(ctx context.Context, userId int64, amount decimal.Decimal, ttype, tref string) error {
	_, err := c.db.Exec(ctx, `
		INSERT INTO balances (user_id, ttype, dr, cr, tref, status)
		VALUES ($1, $2, 0, $3, $4, 'completed')
	`, userId, ttype, amount, tref)
	if err != nil {
		return fmt.Errorf("failed to insert debit: %w", err)
	}

	return nil
}

// InsertCredit records coins going to the user (a dr row), e.g. a payout at
// game end.
func (c *BalanceStore) InsertCredit(ctx context.Context, userId int64, amount decimal.Decimal, ttype, tref string) error {
	_, err := c.db.Exec(ctx, `
		INSERT INTO balances (user_id, ttype, dr, cr, tref, status)
		VALUES ($1, $2, $3, 0, $4, 'completed')
	`, userId, ttype, amount, tref)
	if err != nil {
		return fmt.Errorf("failed to insert credit: %w", err)
	}

	return nil
}
