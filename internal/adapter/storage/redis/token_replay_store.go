package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// TokenReplayStore implements ports.TokenReplayStore using Redis SET NX.
// Consumed payment token ids only need to live slightly past token expiry;
// after that the duplicate check in the database rejects replays anyway.
type TokenReplayStore struct {
	client *goredis.Client
	prefix string
}

// NewTokenReplayStore creates a new Redis-backed token replay store.
func NewTokenReplayStore(client *goredis.Client) *TokenReplayStore {
	return &TokenReplayStore{
		client: client,
		prefix: "consumed:",
	}
}

// MarkConsumed atomically records a token id as consumed.
// Returns true if the token was not seen before.
func (s *TokenReplayStore) MarkConsumed(ctx context.Context, transactionID string, ttl time.Duration) (bool, error) {
	key := s.prefix + transactionID
	result, err := s.client.SetArgs(ctx, key, 1, goredis.SetArgs{
		Mode: "NX",
		TTL:  ttl,
	}).Result()
	if err != nil {
		if err == goredis.Nil {
			// Key already exists — token was already consumed
			return false, nil
		}
		return false, fmt.Errorf("redis token replay check: %w", err)
	}
	return result == "OK", nil
}
