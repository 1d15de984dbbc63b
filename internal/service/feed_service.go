package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/tridxis/price-agent/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

const analysesFeedKey = "analyses:recent"

const defaultFeedSize = 50

// AnalysisStore is the durable log of analyzed texts.
type AnalysisStore interface {
	Insert(ctx context.Context, rec *domain.AnalysisRecord) error
	ListRecent(ctx context.Context, limit int) ([]*domain.AnalysisRecord, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

type RedisClient interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// FeedService keeps the analysis log: every result goes to Postgres for
// history and onto a capped Redis list for the recent feed. Both sinks
// are optional and written independently, so losing one never blocks an
// analysis or the other sink.
type FeedService struct {
	tracer trace.Tracer
	store  AnalysisStore
	redis  RedisClient
	size   int
}

func NewFeedService(
	tracer trace.Tracer,
	store AnalysisStore,
	redisClient RedisClient,
	size int,
) *FeedService {
	if size <= 0 {
		size = defaultFeedSize
	}
	return &FeedService{
		tracer: tracer,
		store:  store,
		redis:  redisClient,
		size:   size,
	}
}

// Record writes one finished analysis to every configured sink. The first
// sink error is returned after all sinks were attempted.
func (s *FeedService) Record(ctx context.Context, rec domain.AnalysisRecord) error {
	_, span := s.tracer.Start(ctx, "feed-service.record")
	defer span.End()

	var firstErr error

	if s.store != nil {
		if err := s.store.Insert(ctx, &rec); err != nil {
			firstErr = fmt.Errorf("insert analysis: %w", err)
		}
	}

	if s.redis != nil {
		if err := s.pushFeed(ctx, &rec); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("push feed: %w", err)
		}
	}

	return firstErr
}

// Recent returns the latest records, newest first. The Redis feed is
// consulted first, Postgres serves as fallback when the feed is empty or
// unreadable.
func (s *FeedService) Recent(ctx context.Context, limit int) ([]*domain.AnalysisRecord, error) {
	_, span := s.tracer.Start(ctx, "feed-service.recent")
	defer span.End()

	if limit <= 0 || limit > s.size {
		limit = s.size
	}

	if s.redis != nil {
		records, err := s.readFeed(ctx, limit)
		if err != nil {
			log.Printf("redis feed read error: %v", err)
		}
		if len(records) > 0 {
			return records, nil
		}
	}

	if s.store != nil {
		return s.store.ListRecent(ctx, limit)
	}

	return []*domain.AnalysisRecord{}, nil
}

// CountSince reports how many texts were analyzed after the given time.
// Without a durable store the count is zero.
func (s *FeedService) CountSince(ctx context.Context, since time.Time) (int64, error) {
	if s.store == nil {
		return 0, nil
	}
	return s.store.CountSince(ctx, since)
}

func (s *FeedService) pushFeed(ctx context.Context, rec *domain.AnalysisRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.redis.LPush(ctx, analysesFeedKey, data).Err(); err != nil {
		return err
	}
	return s.redis.LTrim(ctx, analysesFeedKey, 0, int64(s.size)-1).Err()
}

func (s *FeedService) readFeed(ctx context.Context, limit int) ([]*domain.AnalysisRecord, error) {
	entries, err := s.redis.LRange(ctx, analysesFeedKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]*domain.AnalysisRecord, 0, len(entries))
	for _, entry := range entries {
		rec := &domain.AnalysisRecord{}
		if err := json.Unmarshal([]byte(entry), rec); err != nil {
			return nil, fmt.Errorf("unmarshal feed entry: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}
