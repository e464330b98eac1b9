// Package lock provides distributed locking for per-shipment mutations.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	apinvoiceapp "github.com/freightdesk/backend/internal/application/apinvoice"
	"github.com/freightdesk/backend/internal/domain/shared"
	infraconfig "github.com/freightdesk/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
)

// Ensure RedisShipmentLocker implements the application's ShipmentLocker port
var _ apinvoiceapp.ShipmentLocker = (*RedisShipmentLocker)(nil)

// ErrLockNotObtained is returned when another worker holds the shipment lock
// and retries were exhausted.
var ErrLockNotObtained = shared.NewDomainError("LOCK_NOT_OBTAINED", "shipment is locked by another operation")

// RedisShipmentLocker serializes cost mutations per shipment using Redis
// locks. Two workers applying invoices to the same shipment contend on the
// same key; the loser retries with linear backoff and fails if the holder
// does not release in time.
type RedisShipmentLocker struct {
	locker     *redislock.Client
	ttl        time.Duration
	retryDelay time.Duration
	maxRetries int
}

// NewRedisShipmentLocker creates a locker backed by the given Redis client.
func NewRedisShipmentLocker(client *redis.Client, cfg *infraconfig.LockConfig) *RedisShipmentLocker {
	l := &RedisShipmentLocker{
		locker:     redislock.New(client),
		ttl:        30 * time.Second,
		retryDelay: 100 * time.Millisecond,
		maxRetries: 20,
	}
	if cfg != nil {
		if cfg.TTL > 0 {
			l.ttl = cfg.TTL
		}
		if cfg.RetryDelay > 0 {
			l.retryDelay = cfg.RetryDelay
		}
		if cfg.MaxRetries > 0 {
			l.maxRetries = cfg.MaxRetries
		}
	}
	return l
}

// Acquire obtains the mutation lock for a shipment, blocking with retries
// until obtained or exhausted.
func (l *RedisShipmentLocker) Acquire(ctx context.Context, shipmentCode string) (apinvoiceapp.Lock, error) {
	opts := &redislock.Options{
		RetryStrategy: redislock.LimitRetry(redislock.LinearBackoff(l.retryDelay), l.maxRetries),
	}
	lock, err := l.locker.Obtain(ctx, lockKey(shipmentCode), l.ttl, opts)
	if err == redislock.ErrNotObtained {
		return nil, ErrLockNotObtained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to obtain shipment lock: %w", err)
	}
	return &redisLock{lock: lock}, nil
}

type redisLock struct {
	lock *redislock.Lock
}

// Release releases the held lock. Releasing a lock whose TTL already expired
// is not an error worth surfacing to callers.
func (r *redisLock) Release(ctx context.Context) error {
	if err := r.lock.Release(ctx); err != nil && err != redislock.ErrLockNotHeld {
		return err
	}
	return nil
}

func lockKey(shipmentCode string) string {
	return "shipment:costs:" + shipmentCode
}
