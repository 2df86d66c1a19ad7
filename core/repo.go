package core

import (
	"context"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
)

type Transaction interface {
	Conn
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type Conn interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Transactional is implemented by every repository so services can open a
// unit of work spanning several of them against the same pool.
type Transactional interface {
	BeginTransaction(ctx context.Context) (Transaction, error)
}

type UpdateOptions struct {
	Tx Transaction
}

type QueryOptions struct {
	ForUpdate bool
	Tx        Transaction
}
