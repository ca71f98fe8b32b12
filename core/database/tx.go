package database

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go-musician-booking/core/logger"

	"github.com/jmoiron/sqlx"
)

// Transactor runs units of work atomically. Nested WithTx calls join the
// outer transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
	// Savepoint isolates fn inside the current transaction: when fn fails only
	// its own writes are rolled back.
	Savepoint(ctx context.Context, fn func(ctx context.Context) error) error
}

type txKey struct{}

func txFromContext(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx
}

var savepointSeq atomic.Uint64

func (d *Database) WithTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}

	tx, err := d.sqlx.BeginTxx(ctx, nil)
	if err != nil {
		logger.Error("Database:WithTx:Begin:Error:", err)
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("Database:WithTx:Rollback:Error:", rbErr)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		logger.Error("Database:WithTx:Commit:Error:", err)
		return err
	}
	return nil
}

func (d *Database) Savepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	tx := txFromContext(ctx)
	if tx == nil {
		return fn(ctx)
	}

	name := fmt.Sprintf("sp_%d", savepointSeq.Add(1))
	if _, err := tx.ExecContext(ctx, "SAVEPOINT "+name); err != nil {
		return err
	}

	if err := fn(ctx); err != nil {
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			logger.Error("Database:Savepoint:Rollback:Error:", rbErr)
			return rbErr
		}
		return err
	}

	if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name); err != nil {
		logger.Error("Database:Savepoint:Release:Error:", err)
		if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name); rbErr != nil {
			logger.Error("Database:Savepoint:Rollback:Error:", rbErr)
		}
		return err
	}
	return nil
}

// AdvisoryXactLock blocks until the transaction-scoped lock for key is held.
// Outside a transaction it is a no-op.
func (d *Database) AdvisoryXactLock(ctx context.Context, key string) error {
	if txFromContext(ctx) == nil {
		return nil
	}
	return d.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key)
}

type memTxKey struct{}

// MemoryTransactor serialises units of work for the in-memory stores.
// It offers no rollback.
type MemoryTransactor struct {
	mu sync.Mutex
}

func NewMemoryTransactor() *MemoryTransactor {
	return &MemoryTransactor{}
}

func (m *MemoryTransactor) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(context.WithValue(ctx, memTxKey{}, true))
}

func (m *MemoryTransactor) Savepoint(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
