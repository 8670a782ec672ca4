// Package state holds the client's reactive state stores: journal, moods,
// chat, onboarding and plan. Every mutation computes the next value, writes
// it through the persisted key-value store and notifies subscribers before
// returning.
package state

import (
	"context"
	"slices"
	"sync"

	"github.com/SelJom/ClarityAI/internal/store"
)

// Value is an observable container. Writers are serialized; listeners run
// synchronously in the writing goroutine and must not write to the same
// Value from inside the callback.
//
// Values handed out by Get and to listeners are shared snapshots and must be
// treated as read-only.
type Value[T any] struct {
	pub sync.Mutex // serializes compute, persist and notify

	mu sync.RWMutex
	v  T

	subMu  sync.Mutex
	subs   map[uint64]func(T)
	nextID uint64

	persist func(T)
}

// NewValue creates an in-memory Value.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial, subs: make(map[uint64]func(T))}
}

// NewPersisted creates a Value restored from key in s. normalize, when not
// nil, is applied to the loaded snapshot. Every later write is saved back
// under the same key.
func NewPersisted[T any](ctx context.Context, s store.Store, key string, fallback T, normalize func(T) T) *Value[T] {
	initial := store.Load(ctx, s, key, fallback)
	if normalize != nil {
		initial = normalize(initial)
	}
	v := NewValue(initial)
	v.persist = func(next T) {
		store.Save(context.Background(), s, key, next)
	}
	return v
}

// Get returns the current snapshot.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.v
}

// Set replaces the value.
func (v *Value[T]) Set(next T) {
	v.Update(func(T) T { return next })
}

// Update replaces the value with fn(current) and returns the new value.
func (v *Value[T]) Update(fn func(T) T) T {
	next, _ := v.UpdateIf(func(cur T) (T, bool) { return fn(cur), true })
	return next
}

// UpdateIf is Update with a veto: when fn reports false nothing is written,
// persisted or published and the current value is returned.
func (v *Value[T]) UpdateIf(fn func(T) (T, bool)) (T, bool) {
	v.pub.Lock()
	defer v.pub.Unlock()

	next, ok := fn(v.Get())
	if !ok {
		return v.Get(), false
	}

	v.mu.Lock()
	v.v = next
	v.mu.Unlock()

	if v.persist != nil {
		v.persist(next)
	}
	v.notify(next)
	return next, true
}

// Subscribe registers fn for every published value. The returned function
// removes the subscription and is safe to call more than once.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.subMu.Lock()
	id := v.nextID
	v.nextID++
	v.subs[id] = fn
	v.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.subMu.Lock()
			delete(v.subs, id)
			v.subMu.Unlock()
		})
	}
}

func (v *Value[T]) notify(next T) {
	v.subMu.Lock()
	ids := make([]uint64, 0, len(v.subs))
	for id := range v.subs {
		ids = append(ids, id)
	}
	v.subMu.Unlock()

	// Registration order.
	slices.Sort(ids)
	for _, id := range ids {
		v.subMu.Lock()
		fn, ok := v.subs[id]
		v.subMu.Unlock()
		if ok {
			fn(next)
		}
	}
}
