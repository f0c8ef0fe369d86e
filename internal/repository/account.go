package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/clientdesk/clientdesk/internal/model"
)

const accountColumns = `id, handle, email, full_name, password_hash, active, created_at, updated_at`

// FindAccountByHandle retrieves an account by handle, active or not.
func (t *pgTx) FindAccountByHandle(ctx context.Context, handle string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE handle = $1`

	account, err := scanAccount(t.tx.QueryRow(ctx, query, handle))
	if err != nil {
		return nil, fmt.Errorf("failed to get account by handle: %w", err)
	}
	return account, nil
}

// GetAccountByID retrieves an account by its ID.
func (t *pgTx) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`

	account, err := scanAccount(t.tx.QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}
	return account, nil
}

// InsertAccount inserts a new account and fills in its generated fields.
func (t *pgTx) InsertAccount(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (handle, email, full_name, password_hash, active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := t.tx.QueryRow(ctx, query,
		account.Handle,
		account.Email,
		account.FullName,
		account.PasswordHash,
		account.Active,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		if conflict := accountConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// UpdateAccount stores the mutable fields of an account.
// The handle is never rewritten.
func (t *pgTx) UpdateAccount(ctx context.Context, account *model.Account) error {
	query := `
		UPDATE accounts
		SET email = $2, full_name = $3, password_hash = $4, active = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at
	`

	err := t.tx.QueryRow(ctx, query,
		account.ID,
		account.Email,
		account.FullName,
		account.PasswordHash,
		account.Active,
	).Scan(&account.UpdatedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		if conflict := accountConflict(err); conflict != nil {
			return conflict
		}
		return fmt.Errorf("failed to update account: %w", err)
	}

	return nil
}

// scanAccount scans a single row into an Account model.
func scanAccount(row pgx.Row) (*model.Account, error) {
	var account model.Account
	err := row.Scan(
		&account.ID,
		&account.Handle,
		&account.Email,
		&account.FullName,
		&account.PasswordHash,
		&account.Active,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}
