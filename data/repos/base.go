package repos

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	q "cryptostats/data/queries"
)

// DatabasePool is what the repos need from a pool, satisfied by *pgxpool.Pool and by pgxmock
type DatabasePool interface {
	executor
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// executor is shared by the pool and a transaction
type executor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

type Postgres struct {
	db DatabasePool
}

func GetPostgresConnection(ctx context.Context, connectionString string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(connectionString)
	if err != nil {
		return nil, fmt.Errorf("error parsing pgx connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("error making new pgx pool: %w", err)
	}

	// the pool connects lazily, fail here rather than on the first query
	pg := &Postgres{pool}
	if err := pg.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pg, nil
}

// NewPostgres wraps an existing pool
func NewPostgres(pool DatabasePool) *Postgres {
	return &Postgres{pool}
}

func (pg *Postgres) GetTransaction(ctx context.Context) (pgx.Tx, error) {
	return pg.db.Begin(ctx)
}

func (pg *Postgres) Ping(ctx context.Context) error {
	if err := pg.db.Ping(ctx); err != nil {
		return fmt.Errorf("error pinging database: %w", err)
	}
	return nil
}

func (pg *Postgres) Close() {
	pg.db.Close()
}

// EnsureSchema creates the tables if they do not exist yet
func (pg *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := pg.db.Exec(ctx, q.Get(q.QueryHelper.Schema.CreateTables)); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}

// executor returns the transaction when there is one, otherwise the pool
func (pg *Postgres) executor(tx pgx.Tx) executor {
	if tx == nil {
		return pg.db
	}
	return tx
}

func (pg *Postgres) BulkInsert(ctx context.Context, tableName string, columns []string, data [][]any, tx pgx.Tx) (int64, error) {
	return pg.executor(tx).CopyFrom(ctx, pgx.Identifier{tableName}, columns, pgx.CopyFromRows(data))
}

func Query[T any](ctx context.Context, e executor, query string, args pgx.NamedArgs) ([]*T, error) {
	rows, err := e.Query(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("unable to query: %w", err)
	}
	defer rows.Close()

	res, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, fmt.Errorf("error occured while collecting rows in query: %w", err)
	}

	result := make([]*T, len(res))
	for i := range res {
		result[i] = &res[i]
	}

	return result, nil
}
