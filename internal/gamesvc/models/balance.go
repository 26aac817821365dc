package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is one double-entry row in the balances table. A user's coin
// balance is SUM(dr) - SUM(cr) over their completed rows.
type Balance struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	TType     string          `json:"ttype"` // 'deposit', 'stake', 'payout'
	Dr        decimal.Decimal `json:"dr"`
	Cr        decimal.Decimal `json:"cr"`
	TRef      string          `json:"tref"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
