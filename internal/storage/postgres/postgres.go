// Package postgres persists calculation history in PostgreSQL using pgx v5.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/dicecalc/internal/config"
)

// ApplicationName identifies calculator connections in pg_stat_activity.
const ApplicationName = "dicecalc"

// undefinedTable is the SQLSTATE for a missing relation.
const undefinedTable = "42P01"

// ErrSchemaNotMigrated is returned when the calculations table does not exist.
// Run cmd/migrate before starting the server.
var ErrSchemaNotMigrated = errors.New("calculation history schema is not migrated")

// Pool is the connection pool behind calculation history.
type Pool struct {
	pool *pgxpool.Pool
}

// NewPool connects to the history database described by cfg.
//
// Precondition: cfg must contain valid database connection parameters.
// Postcondition: Returns a Pool whose database answered a ping, or a non-nil
// error. The schema is not checked; see VerifySchema.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}

	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	poolCfg.ConnConfig.RuntimeParams["application_name"] = ApplicationName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &Pool{pool: pool}, nil
}

// VerifySchema checks that the calculations table exists.
//
// Postcondition: Returns an error wrapping ErrSchemaNotMigrated when the
// table is missing, or the query error for any other failure.
func (p *Pool) VerifySchema(ctx context.Context) error {
	rows, err := p.pool.Query(ctx, `SELECT 1 FROM calculations LIMIT 0`)
	if err == nil {
		rows.Close()
		err = rows.Err()
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == undefinedTable {
		return fmt.Errorf("%w: %s", ErrSchemaNotMigrated, pgErr.Message)
	}
	if err != nil {
		return fmt.Errorf("checking calculations table: %w", err)
	}
	return nil
}

// Health checks within timeout that the database answers and that the
// history schema is still in place.
//
// Precondition: The pool must not be closed.
func (p *Pool) Health(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pinging database: %w", err)
	}
	return p.VerifySchema(ctx)
}

// History returns a HistoryRepository sharing this pool.
func (p *Pool) History() *HistoryRepository {
	return NewHistoryRepository(p.pool)
}

// Close releases all pool resources.
func (p *Pool) Close() {
	p.pool.Close()
}

// DB exposes the underlying pgxpool.Pool for migrations and tests.
func (p *Pool) DB() *pgxpool.Pool {
	return p.pool
}
