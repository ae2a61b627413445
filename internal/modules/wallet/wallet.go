// Package wallet moves funds between accounts. Transfers are plain SQL
// statements against the caller's transaction so a transfer and the
// bookkeeping around it commit or roll back as one unit.
package wallet

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/drawpot/drawpot/internal/modules/wallet/domain"

	"github.com/eskrenkovic/tql"
	"github.com/google/uuid"
)

// CreateAccount inserts an account with a zero balance. Creating an account
// that already exists is a no-op.
func CreateAccount(ctx context.Context, tx *sql.Tx, id uuid.UUID, now time.Time) error {
	const stmt = `
		INSERT INTO
			wallet_accounts (id, balance, created_at)
		VALUES
			($1, 0, $2)
		ON CONFLICT (id) DO NOTHING;`
	_, err := tql.Exec(ctx, tx, stmt, id, now)
	return err
}

// Deposit credits an account from the external on-ramp, creating the account
// on first use.
func Deposit(ctx context.Context, tx *sql.Tx, accountID uuid.UUID, amount int64, reference string, now time.Time) error {
	if err := CreateAccount(ctx, tx, accountID, now); err != nil {
		return err
	}

	account, err := lockAccount(ctx, tx, accountID)
	if err != nil {
		return err
	}

	account.Credit(amount)

	if err := updateBalance(ctx, tx, account); err != nil {
		return err
	}

	return appendEntry(ctx, tx, domain.Entry{
		ID:           uuid.New(),
		AccountID:    account.ID,
		Amount:       amount,
		BalanceAfter: account.Balance,
		Reference:    reference,
		CreatedAt:    now,
	})
}

// Transfer debits from and credits to atomically within the caller's
// transaction. Fails with domain.ErrInsufficientFunds without any effect
// when the source balance cannot cover the amount.
func Transfer(ctx context.Context, tx *sql.Tx, fromID, toID uuid.UUID, amount int64, reference string, now time.Time) error {
	// Lock rows in a deterministic order so concurrent transfers between the
	// same pair of accounts cannot deadlock.
	first, second := fromID, toID
	if second.String() < first.String() {
		first, second = second, first
	}

	locked := map[uuid.UUID]*domain.Account{}
	for _, id := range []uuid.UUID{first, second} {
		account, err := lockAccount(ctx, tx, id)
		if err != nil {
			return err
		}
		locked[id] = account
	}

	from, to := locked[fromID], locked[toID]

	if err := from.Debit(amount); err != nil {
		return err
	}
	to.Credit(amount)

	for _, account := range []*domain.Account{from, to} {
		if err := updateBalance(ctx, tx, account); err != nil {
			return err
		}
	}

	entries := []domain.Entry{
		{
			ID:           uuid.New(),
			AccountID:    from.ID,
			Amount:       -amount,
			BalanceAfter: from.Balance,
			Reference:    reference,
			CreatedAt:    now,
		},
		{
			ID:           uuid.New(),
			AccountID:    to.ID,
			Amount:       amount,
			BalanceAfter: to.Balance,
			Reference:    reference,
			CreatedAt:    now,
		},
	}

	for _, entry := range entries {
		if err := appendEntry(ctx, tx, entry); err != nil {
			return err
		}
	}

	return nil
}

func lockAccount(ctx context.Context, tx *sql.Tx, id uuid.UUID) (*domain.Account, error) {
	const query = `
		SELECT
			id, balance, created_at
		FROM
			wallet_accounts
		WHERE
			id = $1
		FOR UPDATE;`

	account, err := tql.QuerySingle[domain.Account](ctx, tx, query, id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, domain.ErrAccountNotFound
	case err != nil:
		return nil, err
	}

	return &account, nil
}

func updateBalance(ctx context.Context, tx *sql.Tx, account *domain.Account) error {
	const stmt = `
		UPDATE
			wallet_accounts
		SET
			balance = $2
		WHERE
			id = $1;`
	_, err := tql.Exec(ctx, tx, stmt, account.ID, account.Balance)
	return err
}

func appendEntry(ctx context.Context, tx *sql.Tx, entry domain.Entry) error {
	const stmt = `
		INSERT INTO
			wallet_entries (id, account_id, amount, balance_after, reference, created_at)
		VALUES
			(:id, :account_id, :amount, :balance_after, :reference, :created_at);`
	_, err := tql.Exec(ctx, tx, stmt, entry)
	return err
}
