// Package pgx implements store.GraphStorage on PostgreSQL with pgvector
// for embedding storage.
package pgx

import (
	"context"
	"sync"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type pgxIConn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, optionsAndArgs ...any) (pgxv5.Rows, error)
	QueryRow(ctx context.Context, sql string, optionsAndArgs ...any) pgxv5.Row
	Begin(ctx context.Context) (pgxv5.Tx, error)
}

// GraphDBStorage implements store.GraphStorage against PostgreSQL. The
// mutex serializes node creation so the per-workspace uniqueness check
// and the insert act as one step; everything else runs unlocked.
type GraphDBStorage struct {
	conn   pgxIConn
	dbLock sync.Mutex
}

// NewGraphDBStorage creates a GraphDBStorage on an existing connection
// or pool.
func NewGraphDBStorage(conn pgxIConn) *GraphDBStorage {
	return &GraphDBStorage{conn: conn}
}
