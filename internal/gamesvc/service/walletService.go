package service

import (
	"context"

	"github.com/shopspring/decimal"
)

// WalletService is the coin wallet over double-entry balance rows. Stakes
// are written as debits (cr), payouts as credits (dr).
type WalletService struct {
	balanceStore BalanceStore
}

func NewWalletService(store BalanceStore) *WalletService {
	return &WalletService{balanceStore: store}
}

func (s *WalletService) GetBalance(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return s.balanceStore.GetBalanceByUserID(ctx, userID)
}

func (s *WalletService) Debit(ctx context.Context, userID int64, amount int64, tref string) error {
	return s.balanceStore.InsertDebit(ctx, userID, decimal.NewFromInt(amount), "stake", tref)
}

func (s *WalletService) Credit(ctx context.Context, userID int64, amount int64, tref string) error {
	return s.balanceStore.InsertCredit(ctx, userID, decimal.NewFromInt(amount), "payout", tref)
}
