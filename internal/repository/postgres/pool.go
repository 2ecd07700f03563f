// Package postgres keeps the users and groups collections in PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/and161185/secret-santa/internal/model"
	"github.com/and161185/secret-santa/internal/repository"
)

// uniqueViolation is the SQLSTATE of a duplicate primary key, raised when two
// first saves of the same collection race on INSERT.
const uniqueViolation = "23505"

// Pool is what the collection repos and the login limiter need from a
// connection pool. *pgxpool.Pool and pgxmock.PgxPoolIface both satisfy it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Close()
}

// DB is the Postgres backend. Each collection is one row of the collections
// table (migrations/00001_collections.sql): a name, a version bumped on every
// save and the records as a JSONB array.
type DB struct{ Pool Pool }

// New connects to dsn and checks the server answers before returning.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &DB{Pool: pool}, nil
}

// Stores returns the users and groups collections. Closing the bundle closes the pool.
func (db *DB) Stores() *repository.Stores {
	return &repository.Stores{
		Users:  NewCollectionRepo[model.User](db, repository.Users),
		Groups: NewCollectionRepo[model.Group](db, repository.Groups),
		Close: func() error {
			db.Pool.Close()
			return nil
		},
	}
}

func isUniqueViolation(err error) bool {
	var pg *pgconn.PgError
	return errors.As(err, &pg) && pg.Code == uniqueViolation
}
