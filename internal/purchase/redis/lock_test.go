package redis

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"ms-cinema/internal/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestRedis starts an in-memory Redis and a client pointed at it.
func setupTestRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	require.NoError(t, client.Ping(context.Background()).Err())

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return NewRedis(client, time.Minute, logger.NewNop()), mr
}

func TestLockSeats_AllOrNothing(t *testing.T) {
	r, mr := setupTestRedis(t)
	ctx := context.Background()

	locked, err := r.LockSeat(ctx, 2, "existing")
	require.NoError(t, err)
	require.True(t, locked)

	locked, err = r.LockSeats(ctx, []int64{1, 2, 3}, "new")
	require.NoError(t, err)
	assert.False(t, locked)

	assert.Equal(t, []string{seatKey(2)}, mr.Keys(), "seats 1 and 3 must have been released")
}

func TestUnlockSeats_OnlyOwner(t *testing.T) {
	r, mr := setupTestRedis(t)
	ctx := context.Background()
	seats := []int64{10, 11}

	locked, err := r.LockSeats(ctx, seats, "purchase-a")
	require.NoError(t, err)
	require.True(t, locked)

	require.NoError(t, r.UnlockSeats(ctx, seats, "purchase-b"))
	assert.True(t, mr.Exists(seatKey(10)))
	assert.True(t, mr.Exists(seatKey(11)))

	require.NoError(t, r.UnlockSeats(ctx, seats, "purchase-a"))
	assert.Empty(t, mr.Keys())
}

func TestLockSeats_RepeatedSeatLocksOnce(t *testing.T) {
	r, mr := setupTestRedis(t)
	ctx := context.Background()

	locked, err := r.LockSeats(ctx, []int64{7, 7, 8}, "purchase-a")
	require.NoError(t, err)
	assert.True(t, locked)
	assert.ElementsMatch(t, []string{seatKey(7), seatKey(8)}, mr.Keys())

	require.NoError(t, r.UnlockSeats(ctx, []int64{7, 7, 8}, "purchase-a"))
	assert.Empty(t, mr.Keys())
}

func TestSeatLockExpires(t *testing.T) {
	r, mr := setupTestRedis(t)
	ctx := context.Background()

	locked, err := r.LockSeat(ctx, 5, "slow")
	require.NoError(t, err)
	require.True(t, locked)

	mr.FastForward(2 * time.Minute)

	locked, err = r.LockSeat(ctx, 5, "next")
	require.NoError(t, err)
	assert.True(t, locked)
}

func TestConcurrentLockAttempts_SingleWinner(t *testing.T) {
	r, _ := setupTestRedis(t)
	seats := []int64{100, 101, 102}

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			ok, err := r.LockSeats(context.Background(), seats, fmt.Sprintf("purchase-%d", n))
			if err == nil && ok {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, winners, "locks are never released here so only one attempt can win")
}

func TestMarkReminderSent(t *testing.T) {
	r, mr := setupTestRedis(t)
	ctx := context.Background()

	first, err := r.MarkReminderSent(ctx, 7, time.Hour)
	require.NoError(t, err)
	assert.True(t, first)

	again, err := r.MarkReminderSent(ctx, 7, time.Hour)
	require.NoError(t, err)
	assert.False(t, again)

	assert.True(t, mr.Exists("reminder_sent:7"))
}
