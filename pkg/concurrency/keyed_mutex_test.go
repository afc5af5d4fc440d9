package concurrency

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_SameKeyIsSerialized(t *testing.T) {
	km := NewKeyedMutex[uint]()

	var (
		wg      sync.WaitGroup
		active  atomic.Int32
		maxSeen atomic.Int32
		counter int
	)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			km.Lock(7)
			defer km.Unlock(7)

			n := active.Add(1)
			if n > maxSeen.Load() {
				maxSeen.Store(n)
			}
			counter++
			active.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, int32(1), maxSeen.Load())
	assert.Equal(t, 0, km.Len())
}

func TestKeyedMutex_TryLock(t *testing.T) {
	km := NewKeyedMutex[string]()

	require.True(t, km.TryLock("a"))
	assert.False(t, km.TryLock("a"))
	assert.True(t, km.TryLock("b"))
	assert.Equal(t, 2, km.Len())

	km.Unlock("a")
	km.Unlock("b")
	assert.Equal(t, 0, km.Len())

	// 실패한 TryLock은 엔트리를 남기지 않는다.
	km.Lock("c")
	assert.False(t, km.TryLock("c"))
	km.Unlock("c")
	assert.Equal(t, 0, km.Len())
}

func TestKeyedMutex_UnlockWithoutLockPanics(t *testing.T) {
	km := NewKeyedMutex[int]()

	assert.Panics(t, func() {
		km.Unlock(1)
	})
}
