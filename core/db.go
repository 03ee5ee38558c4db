package core

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor is the capability shared by *sqlx.DB and *sqlx.Tx.
	// Repositories accept it as an optional trailing argument so services
	// can run several calls in one transaction.
	DBExecutor interface {
		sqlx.ExtContext

		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	}

	DB interface {
		DBExecutor

		BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
	}

	// Transactor runs a check-then-write sequence atomically. NewTransactor
	// adapts a DB; storage backends without real transactions (in-memory)
	// implement it by holding a lock for the whole sequence.
	Transactor interface {
		InTx(ctx context.Context, fn func(exec ...DBExecutor) error) error
	}

	sqlTransactor struct {
		db DB
	}
)

func NewTransactor(db DB) Transactor {
	return &sqlTransactor{db: db}
}

// InTx executes fn within a transaction rolled back on error.
func (t *sqlTransactor) InTx(ctx context.Context, fn func(exec ...DBExecutor) error) error {
	tx, err := t.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// RunInTx executes fn through db. A nil db runs fn directly, with no
// atomicity guarantee; services that need one must be wired with a
// Transactor.
func RunInTx(ctx context.Context, db Transactor, fn func(exec ...DBExecutor) error) error {
	if db == nil {
		return fn()
	}
	return db.InTx(ctx, fn)
}
