package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotFound   = errors.New("account not found")
)

// Account holds a balance in indivisible base units. Players own one account
// each; every game owns a custodial pool account.
type Account struct {
	ID        uuid.UUID `db:"id"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
}

// Entry is one append-only ledger line. Every balance change writes an entry
// recording the counterparty reference and the balance after the change.
type Entry struct {
	ID           uuid.UUID `db:"id"`
	AccountID    uuid.UUID `db:"account_id"`
	Amount       int64     `db:"amount"` // negative for debits
	BalanceAfter int64     `db:"balance_after"`
	Reference    string    `db:"reference"`
	CreatedAt    time.Time `db:"created_at"`
}

func (a *Account) Debit(amount int64) error {
	if a.Balance < amount {
		return ErrInsufficientFunds
	}

	a.Balance -= amount
	return nil
}

func (a *Account) Credit(amount int64) {
	a.Balance += amount
}
