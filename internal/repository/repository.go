// Package repository provides the collaborator store: a transactional unit
// of work over accounts and projects, backed by PostgreSQL or memory.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clientdesk/clientdesk/internal/model"
)

// Store errors.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrProjectNotFound = errors.New("project not found")
	ErrHandleExists    = errors.New("handle already exists")
	ErrEmailExists     = errors.New("email already exists")

	ErrInvalidProjectState = errors.New("invalid project state")
)

// Tx exposes the record operations available inside one unit of work.
type Tx interface {
	FindAccountByHandle(ctx context.Context, handle string) (*model.Account, error)
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)
	InsertAccount(ctx context.Context, account *model.Account) error
	UpdateAccount(ctx context.Context, account *model.Account) error

	GetProjectByID(ctx context.Context, id int64) (*model.Project, error)
	InsertProject(ctx context.Context, project *model.Project) error
	UpdateProject(ctx context.Context, project *model.Project) error
	DeleteProject(ctx context.Context, id int64) error
	ListProjectsByOwner(ctx context.Context, accountID int64) ([]*model.Project, error)
}

// Store runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise; the connection is released on
// every path.
type Store interface {
	WithTx(ctx context.Context, fn func(tx Tx) error) error
}

// Unique constraint names from the migrations.
const (
	constraintAccountHandle = "accounts_handle_unique"
	constraintAccountEmail  = "accounts_email_unique"
)

// PostgreSQL error codes.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Repository is the PostgreSQL-backed Store.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new Repository with a connection pool.
func New(ctx context.Context, databaseURL string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 2

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool.
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool.
// Use sparingly - prefer adding methods to Repository.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// WithTx acquires a pooled connection, begins a transaction and runs fn.
// It commits on success and rolls back on error or panic; panics are rethrown.
func (r *Repository) WithTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if cerr := tx.Commit(ctx); cerr != nil {
			err = fmt.Errorf("commit transaction: %w", cerr)
		}
	}()

	return fn(&pgTx{tx: tx})
}

// pgTx implements Tx on top of a pgx transaction.
type pgTx struct {
	tx pgx.Tx
}

// uniqueViolation returns the violated constraint for a unique_violation error.
func uniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// isForeignKeyViolation reports whether err is a foreign_key_violation.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation
}

// accountConflict maps a unique violation on accounts to a store error.
func accountConflict(err error) error {
	constraint, ok := uniqueViolation(err)
	if !ok {
		return nil
	}
	switch constraint {
	case constraintAccountHandle:
		return ErrHandleExists
	case constraintAccountEmail:
		return ErrEmailExists
	}
	return fmt.Errorf("unexpected unique violation on %q: %w", constraint, err)
}
