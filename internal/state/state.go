package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"solidus/sitemap/internal/domain"
)

var ErrNoRun = errors.New("no sitemap run recorded")

// RunStore keeps the outcome of the last successful run per host, for the
// sitemap writer to pick up.
type RunStore interface {
	SaveRun(ctx context.Context, summary domain.RunSummary, entries []domain.Entry) error
	LastRun(ctx context.Context, host string) (*domain.RunSummary, error)
	Entries(ctx context.Context, host string) ([]domain.Entry, error)
}

type redisRunStore struct {
	redisClient redis.UniversalClient
	keyPrefix   string
}

func NewRedisRunStore(redisClient redis.UniversalClient) RunStore {
	return &redisRunStore{
		redisClient: redisClient,
		keyPrefix:   "sitemap:run:",
	}
}

func (s *redisRunStore) summaryKey(host string) string {
	return s.keyPrefix + host + ":summary"
}

func (s *redisRunStore) entriesKey(host string) string {
	return s.keyPrefix + host + ":entries"
}

// SaveRun replaces the summary and entry list of the host atomically.
func (s *redisRunStore) SaveRun(ctx context.Context, summary domain.RunSummary, entries []domain.Entry) error {
	summaryValue, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode run summary for %s: %w", summary.Host, err)
	}

	values := make([]any, 0, len(entries))
	for _, entry := range entries {
		value, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to encode entry %s: %w", entry.Loc, err)
		}
		values = append(values, string(value))
	}

	_, err = s.redisClient.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.entriesKey(summary.Host))
		if len(values) > 0 {
			pipe.RPush(ctx, s.entriesKey(summary.Host), values...)
		}
		pipe.Set(ctx, s.summaryKey(summary.Host), summaryValue, 0) // No expiration
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save sitemap run for %s: %w", summary.Host, err)
	}
	return nil
}

func (s *redisRunStore) LastRun(ctx context.Context, host string) (*domain.RunSummary, error) {
	val, err := s.redisClient.Get(ctx, s.summaryKey(host)).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNoRun
		}
		return nil, fmt.Errorf("failed to get last sitemap run for %s: %w", host, err)
	}

	var summary domain.RunSummary
	if err := json.Unmarshal([]byte(val), &summary); err != nil {
		return nil, fmt.Errorf("failed to decode last sitemap run for %s: %w", host, err)
	}
	return &summary, nil
}

func (s *redisRunStore) Entries(ctx context.Context, host string) ([]domain.Entry, error) {
	vals, err := s.redisClient.LRange(ctx, s.entriesKey(host), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get sitemap entries for %s: %w", host, err)
	}

	entries := make([]domain.Entry, 0, len(vals))
	for _, val := range vals {
		var entry domain.Entry
		if err := json.Unmarshal([]byte(val), &entry); err != nil {
			return nil, fmt.Errorf("failed to decode sitemap entry for %s: %w", host, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
