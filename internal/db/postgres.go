package db

import (
	"context"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

var (
	newPool = func(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
		return pgxpool.New(ctx, dsn)
	}
	pingPool = func(ctx context.Context, pool *pgxpool.Pool) error {
		return pool.Ping(ctx)
	}
)

// InitPostgres connects the package-level pool. The database is optional:
// when DATABASE_URL is unset or the server cannot be reached, Pool stays
// nil and the analysis log is disabled.
func InitPostgres(ctx context.Context) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Println("DATABASE_URL not set, analysis log disabled")
		return
	}

	pool, err := newPool(ctx, dsn)
	if err != nil {
		log.Printf("failed to open Postgres pool: %v", err)
		return
	}
	if err := pingPool(ctx, pool); err != nil {
		log.Printf("failed to connect to Postgres: %v", err)
		pool.Close()
		return
	}

	Pool = pool
	log.Println("Connected to Postgres")
}
