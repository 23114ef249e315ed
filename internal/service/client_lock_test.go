package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/mrmbilling/royalty-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalClientLocker_SerializesSameClient(t *testing.T) {
	locker := NewLocalClientLocker()
	ctx := context.Background()

	var mu sync.Mutex
	active, maxActive := 0, 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(ctx, "MRM-1")
			if !assert.NoError(t, err) {
				return
			}
			defer unlock()

			mu.Lock()
			active++
			if active > maxActive {
				maxActive = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
}

func TestLocalClientLocker_DifferentClientsDoNotBlock(t *testing.T) {
	locker := NewLocalClientLocker()
	ctx := context.Background()

	unlockA, err := locker.Lock(ctx, "MRM-1")
	require.NoError(t, err)
	defer unlockA()

	timeoutCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlockB, err := locker.Lock(timeoutCtx, "MRM-2")
	require.NoError(t, err)
	unlockB()
}

func TestLocalClientLocker_ContextCancelled(t *testing.T) {
	locker := NewLocalClientLocker()

	unlock, err := locker.Lock(context.Background(), "MRM-1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = locker.Lock(ctx, "MRM-1")
	assert.ErrorIs(t, err, domain.ErrClientBusy)
}

func TestLocalClientLocker_ReleaseAllowsReacquire(t *testing.T) {
	locker := NewLocalClientLocker()
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "MRM-1")
	require.NoError(t, err)
	unlock()

	unlock, err = locker.Lock(ctx, "MRM-1")
	require.NoError(t, err)
	unlock()
}

func TestNewRedisClientLocker_AppliesDefaults(t *testing.T) {
	locker := NewRedisClientLocker(nil, RedisLockConfig{})

	assert.Equal(t, 30*time.Second, locker.ttl)
	assert.Equal(t, 10*time.Second, locker.wait)
	assert.Equal(t, 100*time.Millisecond, locker.backoff)
	assert.Equal(t, "royalty-client:MRM-7", clientLockKey("MRM-7"))
}
