package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"ms-cinema/internal/logger"

	"github.com/go-redis/redis/v8"
)

const (
	seatLockPrefix = "seat_lock:"
	reminderPrefix = "reminder_sent:"
)

// Redis holds short-lived seat locks taken while a purchase is being
// written, and the markers that keep show reminders from repeating.
type Redis struct {
	Client  *redis.Client
	LockTTL time.Duration
	Logger  *logger.Logger
}

func NewRedis(client *redis.Client, lockTTL time.Duration, log *logger.Logger) *Redis {
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &Redis{Client: client, LockTTL: lockTTL, Logger: log}
}

func seatKey(seatID int64) string {
	return seatLockPrefix + strconv.FormatInt(seatID, 10)
}

func (r *Redis) LockSeat(ctx context.Context, seatID int64, owner string) (bool, error) {
	return r.Client.SetNX(ctx, seatKey(seatID), owner, r.LockTTL).Result()
}

// UnlockSeat removes the lock only when owner still holds it.
func (r *Redis) UnlockSeat(ctx context.Context, seatID int64, owner string) error {
	key := seatKey(seatID)
	val, err := r.Client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val == owner {
		return r.Client.Del(ctx, key).Err()
	}
	return nil
}

// LockSeats locks every seat or none: on the first miss the seats locked so
// far are released. A seat listed twice is locked once.
func (r *Redis) LockSeats(ctx context.Context, seatIDs []int64, owner string) (bool, error) {
	locked := make([]int64, 0, len(seatIDs))
	seen := make(map[int64]struct{}, len(seatIDs))
	for _, seatID := range seatIDs {
		if _, dup := seen[seatID]; dup {
			continue
		}
		seen[seatID] = struct{}{}
		ok, err := r.LockSeat(ctx, seatID, owner)
		if err != nil || !ok {
			for _, l := range locked {
				_ = r.UnlockSeat(ctx, l, owner)
			}
			if err != nil {
				return false, err
			}
			r.Logger.Debug("REDIS", fmt.Sprintf("Seat %d already locked, %s backing off", seatID, owner))
			return false, nil
		}
		locked = append(locked, seatID)
	}
	return true, nil
}

func (r *Redis) UnlockSeats(ctx context.Context, seatIDs []int64, owner string) error {
	var firstErr error
	for _, seatID := range seatIDs {
		if err := r.UnlockSeat(ctx, seatID, owner); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// MarkReminderSent records that purchaseID was reminded. It returns false
// when a reminder was already recorded within ttl.
func (r *Redis) MarkReminderSent(ctx context.Context, purchaseID int64, ttl time.Duration) (bool, error) {
	key := reminderPrefix + strconv.FormatInt(purchaseID, 10)
	return r.Client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
}
