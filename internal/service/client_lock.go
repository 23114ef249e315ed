package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/rs/zerolog/log"
)

// ClientLocker serializes save and cascade work per client
type ClientLocker interface {
	// Lock blocks until the client's lock is held or ctx is done.
	// The returned function releases it.
	Lock(ctx context.Context, clientID string) (func(), error)
}

// LocalClientLocker is an in-process ClientLocker for single-replica deployments
type LocalClientLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocalClientLocker creates a new LocalClientLocker
func NewLocalClientLocker() *LocalClientLocker {
	return &LocalClientLocker{slots: make(map[string]chan struct{})}
}

// Lock acquires the client's slot
func (l *LocalClientLocker) Lock(ctx context.Context, clientID string) (func(), error) {
	l.mu.Lock()
	slot, ok := l.slots[clientID]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[clientID] = slot
	}
	l.mu.Unlock()

	select {
	case slot <- struct{}{}:
		return func() { <-slot }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", domain.ErrClientBusy, ctx.Err())
	}
}

// RedisClientLocker is a ClientLocker backed by redislock, shared across replicas
type RedisClientLocker struct {
	client  *redislock.Client
	ttl     time.Duration
	wait    time.Duration
	backoff time.Duration
}

// RedisLockConfig holds timing for RedisClientLocker
type RedisLockConfig struct {
	TTL     time.Duration // How long a held lock survives without release
	Wait    time.Duration // How long Lock keeps retrying before giving up
	Backoff time.Duration // Delay between attempts
}

// DefaultRedisLockConfig returns sensible defaults
func DefaultRedisLockConfig() RedisLockConfig {
	return RedisLockConfig{
		TTL:     30 * time.Second,
		Wait:    10 * time.Second,
		Backoff: 100 * time.Millisecond,
	}
}

// NewRedisClientLocker creates a new RedisClientLocker
func NewRedisClientLocker(client *redislock.Client, config RedisLockConfig) *RedisClientLocker {
	defaults := DefaultRedisLockConfig()
	if config.TTL <= 0 {
		config.TTL = defaults.TTL
	}
	if config.Wait <= 0 {
		config.Wait = defaults.Wait
	}
	if config.Backoff <= 0 {
		config.Backoff = defaults.Backoff
	}
	return &RedisClientLocker{
		client:  client,
		ttl:     config.TTL,
		wait:    config.Wait,
		backoff: config.Backoff,
	}
}

func clientLockKey(clientID string) string {
	return "royalty-client:" + clientID
}

// Lock obtains the client's redis lock, retrying until the wait deadline
func (l *RedisClientLocker) Lock(ctx context.Context, clientID string) (func(), error) {
	obtainCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	lock, err := l.client.Obtain(obtainCtx, clientLockKey(clientID), l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.backoff),
	})
	if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
		return nil, domain.ErrClientBusy
	}
	if err != nil {
		return nil, fmt.Errorf("obtain client lock: %w", err)
	}

	return func() {
		// release with a fresh context so a cancelled request still frees the lock
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			log.Warn().Err(err).Str("client_id", clientID).Msg("Failed to release client lock")
		}
	}, nil
}
