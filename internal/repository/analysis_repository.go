package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tridxis/price-agent/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/trace"
)

const createAnalysesTable = `
CREATE TABLE IF NOT EXISTS analyses (
    id              BIGSERIAL   PRIMARY KEY,
    text            TEXT        NOT NULL,
    language        TEXT        NOT NULL DEFAULT '',
    primary_intent  TEXT        NOT NULL,
    sentiment_label TEXT        NOT NULL,
    result          JSONB       NOT NULL,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_analyses_created_at
    ON analyses (created_at DESC);
`

type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AnalysisRepository stores every analyzed text with its shaped result
// so intent and sentiment trends can be queried later.
type AnalysisRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewAnalysisRepository(pool PgxPool, tracer trace.Tracer) *AnalysisRepository {
	return &AnalysisRepository{pool: pool, tracer: tracer}
}

func (r *AnalysisRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "analysis-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx, createAnalysesTable)
	return err
}

// Insert stores one record and fills in its generated ID.
func (r *AnalysisRepository) Insert(ctx context.Context, rec *domain.AnalysisRecord) error {
	_, span := r.tracer.Start(ctx, "analysis-repo.insert")
	defer span.End()

	result, err := json.Marshal(rec.Result)
	if err != nil {
		return fmt.Errorf("marshal analysis result: %w", err)
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO analyses (text, language, primary_intent, sentiment_label, result, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		rec.Text, rec.Language, rec.Result.Intent.Primary, rec.Result.Sentiment.Label, result, rec.CreatedAt,
	).Scan(&rec.ID)
}

// ListRecent returns the newest records first.
func (r *AnalysisRepository) ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisRecord, error) {
	_, span := r.tracer.Start(ctx, "analysis-repo.list-recent")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT id, text, language, result, created_at
		 FROM analyses
		 ORDER BY created_at DESC, id DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.AnalysisRecord
	for rows.Next() {
		rec := &domain.AnalysisRecord{}
		var result []byte
		if err := rows.Scan(&rec.ID, &rec.Text, &rec.Language, &result, &rec.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(result, &rec.Result); err != nil {
			return nil, fmt.Errorf("unmarshal analysis result %d: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountSince reports how many texts were analyzed after the given time.
func (r *AnalysisRepository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	_, span := r.tracer.Start(ctx, "analysis-repo.count-since")
	defer span.End()

	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM analyses WHERE created_at >= $1`,
		since,
	).Scan(&count)
	return count, err
}
