// Package wallet implements the coin ledger — the single source of
// truth for the reward balance. Credits are unconditional; debits are
// check-and-debit and can never take the balance negative.
package wallet

import (
	"fmt"

	"github.com/diabetree-app/diabetree/internal/domain"
	"github.com/diabetree-app/diabetree/internal/infra/metrics"
	"github.com/diabetree-app/diabetree/internal/infra/sqlite"
)

// Service manages the coin balance.
type Service struct {
	db *sqlite.DB
}

// NewService creates a wallet service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// Balance returns the owner's current coin balance.
func (s *Service) Balance(owner string) (int64, error) {
	return s.db.Balance(owner)
}

// Credit unconditionally increases the balance and returns the new one.
func (s *Service) Credit(owner string, amount int64) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: credit %d", domain.ErrNegativeAmount, amount)
	}
	if amount == 0 {
		return s.db.Balance(owner)
	}
	bal, err := s.db.AdjustBalance(owner, amount)
	if err != nil {
		return 0, err
	}
	metrics.CoinsCredited.Add(float64(amount))
	metrics.CoinBalance.Set(float64(bal))
	return bal, nil
}

// CheckAndDebit atomically verifies balance >= amount and decreases it.
// On insufficient funds it returns domain.ErrInsufficientFunds and the
// unchanged balance.
func (s *Service) CheckAndDebit(owner string, amount int64) (int64, error) {
	return s.debit(owner, amount, "")
}

// PurchaseCollectible is CheckAndDebit plus recording ownership of the
// item, all in the same atomic step.
func (s *Service) PurchaseCollectible(owner, itemID string, price int64) (int64, error) {
	return s.debit(owner, price, itemID)
}

func (s *Service) debit(owner string, amount int64, ownItemID string) (int64, error) {
	if amount < 0 {
		return 0, fmt.Errorf("%w: debit %d", domain.ErrNegativeAmount, amount)
	}
	var (
		bal int64
		err error
	)
	if ownItemID == "" {
		bal, err = s.db.AdjustBalance(owner, -amount)
	} else {
		bal, err = s.db.PurchaseCollectible(owner, ownItemID, amount)
	}
	if err != nil {
		return bal, err
	}
	metrics.CoinsDebited.Add(float64(amount))
	metrics.CoinBalance.Set(float64(bal))
	return bal, nil
}

// Delta accumulates reward credits during one evaluation so a single
// balance write lands at commit time instead of one write per reward.
type Delta struct {
	total int64
}

// Add accumulates a non-negative credit. Negative amounts are ignored —
// evaluation rewards never debit.
func (d *Delta) Add(amount int64) {
	if amount > 0 {
		d.total += amount
	}
}

// Total returns the accumulated credit.
func (d *Delta) Total() int64 { return d.total }
