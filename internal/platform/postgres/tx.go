// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/ctxkey"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/dberr"
)

// Querier is the subset of pgx shared by [pgxpool.Pool] and [pgx.Tx].
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conn returns the transaction bound to ctx, or the pool when none is active.
func Conn(ctx context.Context, pool *pgxpool.Pool) Querier {
	if transaction, ok := ctx.Value(ctxkey.KeyTx).(pgx.Tx); ok {
		return transaction
	}
	return pool
}

// InTx reports whether ctx already carries a transaction.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(ctxkey.KeyTx).(pgx.Tx)
	return ok
}

// Transactor opens transactions and binds them to a context.
type Transactor struct {
	pool *pgxpool.Pool
}

// NewTransactor creates a [Transactor] over pool.
func NewTransactor(pool *pgxpool.Pool) *Transactor {
	return &Transactor{pool: pool}
}

/*
WithinTx runs fn inside a single transaction.

Repositories called with the derived context pick the transaction up via
[Conn]. A nested call joins the outer transaction. Any error returned by fn,
or by the commit itself (deferred constraint checks), rolls everything back.

Returns:
  - error: fn's error unchanged, a typed constraint error raised at commit,
    or a wrapped begin/commit failure
*/
func (transactor *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if InTx(ctx) {
		return fn(ctx)
	}

	transaction, err := transactor.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("postgres: begin transaction: %w", err)
	}
	defer transaction.Rollback(ctx)

	if err := fn(context.WithValue(ctx, ctxkey.KeyTx, transaction)); err != nil {
		return err
	}

	if err := transaction.Commit(ctx); err != nil {
		return commitError(err)
	}

	return nil
}

// commitError classifies a failed commit so that a constraint checked at
// commit time surfaces like one checked by the statement itself.
func commitError(err error) error {
	return dberr.Wrap(fmt.Errorf("postgres: commit transaction: %w", err), "commit")
}
