package optimistic

import "sync"

// List is a visible collection owned by one controller. Items are identified
// by the key function given to NewList. It is safe for concurrent use.
type List[T any] struct {
	mu    sync.RWMutex
	key   func(T) string
	items []T
}

// NewList returns a List keyed by key, seeded with items.
func NewList[T any](key func(T) string, items ...T) *List[T] {
	return &List[T]{key: key, items: append([]T(nil), items...)}
}

// Key returns the identifier of v.
func (l *List[T]) Key(v T) string { return l.key(v) }

// Items returns a copy of the current contents.
func (l *List[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]T(nil), l.items...)
}

// Len returns the number of items.
func (l *List[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Set replaces the contents.
func (l *List[T]) Set(items []T) {
	l.mu.Lock()
	l.items = append([]T(nil), items...)
	l.mu.Unlock()
}

// Append adds v at the end.
func (l *List[T]) Append(v T) {
	l.mu.Lock()
	l.items = append(l.items, v)
	l.mu.Unlock()
}

// Insert places v at index i, clamped to the list bounds.
func (l *List[T]) Insert(i int, v T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if i < 0 {
		i = 0
	}
	if i >= len(l.items) {
		l.items = append(l.items, v)
		return
	}
	l.items = append(l.items, v)
	copy(l.items[i+1:], l.items[i:])
	l.items[i] = v
}

// Find returns the item with the given id.
func (l *List[T]) Find(id string) (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, v := range l.items {
		if l.key(v) == id {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// Contains reports whether an item with id is present.
func (l *List[T]) Contains(id string) bool {
	_, ok := l.Find(id)
	return ok
}

// Remove deletes the first item with id and returns it with its former index.
func (l *List[T]) Remove(id string) (T, int, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, v := range l.items {
		if l.key(v) == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return v, i, true
		}
	}
	var zero T
	return zero, -1, false
}

// Replace swaps the item with the same id as v. It reports whether one was found.
func (l *List[T]) Replace(v T) bool {
	id := l.key(v)
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.items {
		if l.key(l.items[i]) == id {
			l.items[i] = v
			return true
		}
	}
	return false
}
