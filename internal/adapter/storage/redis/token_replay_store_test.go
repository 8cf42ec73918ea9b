package redis_test

import (
	"context"
	"testing"
	"time"

	"campus-payment-ledger/internal/adapter/storage/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenReplayStore_MarkConsumed(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redis.NewTokenReplayStore(client)
	ctx := context.Background()

	ok, err := store.MarkConsumed(ctx, "txn-abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "first consumption should succeed")

	ok, err = store.MarkConsumed(ctx, "txn-abc", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "replayed token should be rejected")
}

func TestTokenReplayStore_IndependentTokens(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redis.NewTokenReplayStore(client)
	ctx := context.Background()

	ok, err := store.MarkConsumed(ctx, "txn-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.MarkConsumed(ctx, "txn-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTokenReplayStore_Expiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := redis.NewTokenReplayStore(client)
	ctx := context.Background()

	ok, err := store.MarkConsumed(ctx, "txn-exp", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = store.MarkConsumed(ctx, "txn-exp", time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "expired entry frees the id; the database check still rejects the replay")
}
