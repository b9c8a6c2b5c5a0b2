package postgres

import (
	"context"
	"embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spf13/viper"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Conn is satisfied by both the pool and a transaction, so repositories
// work the same way inside and outside a unit of work.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is a Conn that can open transactions.
type Pool interface {
	Conn
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// Client represents a Postgres client.
type Client struct {
	pool Pool
}

// NewClient wraps an existing pool.
func NewClient(pool Pool) *Client {
	return &Client{pool: pool}
}

// Pool returns the underlying connection pool.
func (p *Client) Pool() Pool {
	return p.pool
}

// Ping checks the database is reachable.
func (p *Client) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close closes the database connection for graceful shutdown.
func (p *Client) Close() {
	if closer, ok := p.pool.(interface{ Close() }); ok {
		closer.Close()
	}
}

// DSN builds the connection string from configuration.
func DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		viper.GetString("postgres.host"),
		viper.GetInt("postgres.port"),
		viper.GetString("postgres.user"),
		viper.GetString("postgres.password"),
		viper.GetString("postgres.db"),
		viper.GetString("postgres.sslmode"),
	)
}

// MustNewClient creates a new Postgres client and applies migrations.
func MustNewClient() *Client {
	config, err := pgxpool.ParseConfig(DSN())
	if err != nil {
		panic(err)
	}
	config.MaxConns = viper.GetInt32("postgres.max_conns")

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		panic(err)
	}

	if err := pool.Ping(context.Background()); err != nil {
		panic(err)
	}

	if viper.GetBool("postgres.migrate") {
		if err := migrate(pool); err != nil {
			panic(err)
		}
	}

	return &Client{
		pool: pool,
	}
}

func migrate(pool *pgxpool.Pool) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	if err := goose.Up(db, "migrations"); err != nil && !errors.Is(err, goose.ErrNoNextVersion) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	return nil
}
