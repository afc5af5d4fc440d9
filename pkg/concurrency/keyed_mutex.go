// Package concurrency 동시성 제어를 위한 보조 타입을 제공합니다.
package concurrency

import (
	"sync"
)

// KeyedMutex 키별로 독립된 뮤텍스를 제공합니다.
//
// 같은 키에 대한 작업은 직렬화되고 서로 다른 키는 병렬로 진행됩니다.
// 잠금을 기다리거나 보유한 고루틴이 없는 키의 엔트리는 즉시 제거되므로,
// 키가 계속 늘어나는 경우에도 메모리가 누적되지 않습니다.
type KeyedMutex[K comparable] struct {
	mu    sync.Mutex
	locks map[K]*keyedEntry
}

type keyedEntry struct {
	mu sync.Mutex

	// 이 키를 보유 중이거나 대기 중인 고루틴 수 (KeyedMutex.mu로 보호)
	refs int
}

// NewKeyedMutex 새로운 KeyedMutex를 생성합니다.
func NewKeyedMutex[K comparable]() *KeyedMutex[K] {
	return &KeyedMutex[K]{
		locks: make(map[K]*keyedEntry),
	}
}

// Lock 주어진 키의 잠금을 획득할 때까지 대기합니다.
func (km *KeyedMutex[K]) Lock(key K) {
	km.mu.Lock()
	e, ok := km.locks[key]
	if !ok {
		e = &keyedEntry{}
		km.locks[key] = e
	}
	e.refs++
	km.mu.Unlock()

	e.mu.Lock()
}

// TryLock 대기 없이 잠금 획득을 시도합니다.
func (km *KeyedMutex[K]) TryLock(key K) bool {
	km.mu.Lock()
	defer km.mu.Unlock()

	e, ok := km.locks[key]
	if !ok {
		e = &keyedEntry{}
		km.locks[key] = e
	}

	if !e.mu.TryLock() {
		if !ok {
			delete(km.locks, key)
		}
		return false
	}
	e.refs++

	return true
}

// Unlock 주어진 키의 잠금을 해제합니다. 잠기지 않은 키를 해제하면 패닉이 발생합니다.
func (km *KeyedMutex[K]) Unlock(key K) {
	km.mu.Lock()
	defer km.mu.Unlock()

	e, ok := km.locks[key]
	if !ok {
		panic("concurrency: 잠기지 않은 키의 잠금 해제 시도")
	}

	e.mu.Unlock()

	e.refs--
	if e.refs <= 0 {
		delete(km.locks, key)
	}
}

// Len 현재 추적 중인 키의 개수를 반환합니다.
func (km *KeyedMutex[K]) Len() int {
	km.mu.Lock()
	defer km.mu.Unlock()

	return len(km.locks)
}
