package testdb

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kislikjeka/walletscope/internal/infra/postgres"
)

const image = "postgres:16-alpine"

// TestDB represents a test database instance
type TestDB struct {
	Container *tcpostgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
	// Applied lists the migration versions run against the fresh container
	Applied []string
}

// NewTestDB starts a PostgreSQL container and migrates it with the embedded schema
func NewTestDB(ctx context.Context) (*TestDB, error) {
	container, err := tcpostgres.Run(ctx,
		image,
		tcpostgres.WithDatabase("walletscope_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(120*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	db := &TestDB{Container: container}
	if err := db.connect(ctx); err != nil {
		db.Close(ctx)
		return nil, err
	}
	return db, nil
}

func (db *TestDB) connect(ctx context.Context) error {
	connStr, err := db.Container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return fmt.Errorf("failed to get connection string: %w", err)
	}
	db.ConnStr = connStr

	conn, err := postgres.NewPool(ctx, postgres.Config{URL: connStr, ApplicationName: "walletscope_test", MaxConns: 4})
	if err != nil {
		return err
	}
	db.Pool = conn.Pool

	applied, err := postgres.Migrate(ctx, db.Pool)
	if err != nil {
		return fmt.Errorf("failed to migrate test database: %w", err)
	}
	db.Applied = applied
	return nil
}

// tables lists every data table; schema_migrations is kept across resets
var tables = []string{
	"wallet_accounts",
}

// Reset truncates every data table
func (db *TestDB) Reset(ctx context.Context) error {
	for _, table := range tables {
		if _, err := db.Pool.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the connection pool and terminates the container
func (db *TestDB) Close(ctx context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	if db.Container != nil {
		return db.Container.Terminate(ctx)
	}
	return nil
}
