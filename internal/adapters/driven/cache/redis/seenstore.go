// Package redis provides a Redis-backed seen-hash set so that several
// ingest processes share one deduplication view.
package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/domain"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/core/ports/driven"
	"github.com/mikenano1/STRYDA-v2-sub002/internal/logger"
)

// DefaultKey is the Redis set holding seen content hashes.
const DefaultKey = "stryda:seen"

const dialTimeout = 5 * time.Second

// Ensure SeenStore implements the interface.
var _ driven.SeenStore = (*SeenStore)(nil)

// SeenStore keeps content hashes in a Redis set.
type SeenStore struct {
	rdb *goredis.Client
	key string
}

// NewSeenStore connects to the Redis server at url (redis://...) and
// verifies the connection.
func NewSeenStore(ctx context.Context, url string) (*SeenStore, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: redis url is required", domain.ErrInvalidInput)
	}
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	opts.DialTimeout = dialTimeout

	rdb := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: redis ping: %v", domain.ErrStoreUnavailable, err)
	}

	logger.Debug("redis seen store ready", "addr", opts.Addr, "db", opts.DB)
	return NewSeenStoreWithClient(rdb, DefaultKey), nil
}

// NewSeenStoreWithClient wraps an existing client.
func NewSeenStoreWithClient(rdb *goredis.Client, key string) *SeenStore {
	if key == "" {
		key = DefaultKey
	}
	return &SeenStore{rdb: rdb, key: key}
}

// Seen reports whether the hash is a member of the set.
func (s *SeenStore) Seen(ctx context.Context, hash string) (bool, error) {
	ok, err := s.rdb.SIsMember(ctx, s.key, hash).Result()
	if err != nil {
		return false, fmt.Errorf("redis sismember: %w", err)
	}
	return ok, nil
}

// MarkSeen adds the hash to the set.
func (s *SeenStore) MarkSeen(ctx context.Context, hash string) error {
	if hash == "" {
		return domain.ErrInvalidInput
	}
	if err := s.rdb.SAdd(ctx, s.key, hash).Err(); err != nil {
		return fmt.Errorf("redis sadd: %w", err)
	}
	return nil
}

// Len returns the number of hashes in the set.
func (s *SeenStore) Len(ctx context.Context) (int64, error) {
	return s.rdb.SCard(ctx, s.key).Result()
}

// Close closes the client.
func (s *SeenStore) Close() error {
	return s.rdb.Close()
}
