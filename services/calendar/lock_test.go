package calendar

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"maisonette/utils"

	"github.com/stretchr/testify/require"
)

func TestMemoryUnitLockerSerialisesSameUnit(t *testing.T) {
	locker := NewMemoryUnitLocker()
	var inside, maxInside int32
	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := WithUnitLock(context.Background(), locker, "U1", func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	require.Equal(t, int32(1), maxInside)
	require.Empty(t, locker.locks)
}

func TestMemoryUnitLockerDifferentUnitsDoNotBlock(t *testing.T) {
	locker := NewMemoryUnitLocker()
	unlock, err := locker.Lock(context.Background(), "U1")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlock2, err := locker.Lock(ctx, "U2")
	require.NoError(t, err)
	unlock2()
}

func TestMemoryUnitLockerHonoursContext(t *testing.T) {
	locker := NewMemoryUnitLocker()
	unlock, err := locker.Lock(context.Background(), "U1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "U1")
	require.True(t, utils.IsKind(err, utils.KindConflict))

	unlock()
	unlock()
	require.Empty(t, locker.locks)
}
