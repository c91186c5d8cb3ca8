package oauth

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestStateStore_RoundTrip(t *testing.T) {
	rdb, _ := setupTestRedis(t)
	store := NewStateStore(rdb)
	ctx := context.Background()

	state, err := store.GenerateState(ctx, "http://localhost:3000/engineer")
	require.NoError(t, err)
	assert.Len(t, state, 64)

	redirect, err := store.ValidateState(ctx, state)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:3000/engineer", redirect)

	// 第二次使用失败
	_, err = store.ValidateState(ctx, state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateStore_Invalid(t *testing.T) {
	rdb, _ := setupTestRedis(t)
	store := NewStateStore(rdb)
	ctx := context.Background()

	_, err := store.ValidateState(ctx, "")
	assert.ErrorIs(t, err, ErrEmptyState)

	_, err = store.ValidateState(ctx, "unknown")
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateStore_Expired(t *testing.T) {
	rdb, mr := setupTestRedis(t)
	store := NewStateStore(rdb)
	ctx := context.Background()

	state, err := store.GenerateState(ctx, "")
	require.NoError(t, err)

	mr.FastForward(stateTTL + time.Second)

	_, err = store.ValidateState(ctx, state)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestStateStore_Unique(t *testing.T) {
	rdb, _ := setupTestRedis(t)
	store := NewStateStore(rdb)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		state, err := store.GenerateState(context.Background(), "")
		require.NoError(t, err)
		assert.False(t, seen[state])
		seen[state] = true
	}
}
