// Package dedup remembers recently uploaded file digests in Redis so that an
// identical re-upload by the same user returns the stored record.
package dedup

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "fileintake:dedup:"

type Index struct {
	client *redis.Client
	ttl    time.Duration
}

func New(url string, ttl time.Duration) (*Index, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Index{client: redis.NewClient(opt), ttl: ttl}, nil
}

func Key(ownerID, digest string) string {
	return keyPrefix + ownerID + ":" + strings.ToLower(digest)
}

// Lookup returns the file id stored for the digest, or "" when unknown.
func (i *Index) Lookup(ctx context.Context, ownerID, digest string) (string, error) {
	id, err := i.client.Get(ctx, Key(ownerID, digest)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return id, err
}

func (i *Index) Remember(ctx context.Context, ownerID, digest, fileID string) error {
	return i.client.Set(ctx, Key(ownerID, digest), fileID, i.ttl).Err()
}

func (i *Index) Forget(ctx context.Context, ownerID, digest string) error {
	return i.client.Del(ctx, Key(ownerID, digest)).Err()
}

func (i *Index) Ping(ctx context.Context) error {
	return i.client.Ping(ctx).Err()
}

func (i *Index) Close() error {
	return i.client.Close()
}
