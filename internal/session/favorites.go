package session

import (
	"sort"
	"sync"
)

// Favorites is the set of bookmarked words. It can be toggled by a reviewer
// host while a session runs; changes are persisted with the next save.
type Favorites struct {
	mu    sync.RWMutex
	items map[string]bool
}

// NewFavorites creates a set holding ids
func NewFavorites(ids ...string) *Favorites {
	f := &Favorites{items: make(map[string]bool)}
	f.Replace(ids)
	return f
}

// Replace swaps the whole set
func (f *Favorites) Replace(ids []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = make(map[string]bool, len(ids))
	for _, id := range ids {
		f.items[id] = true
	}
}

// Toggle adds or removes id and reports whether it is now a favorite
func (f *Favorites) Toggle(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.items[id] {
		delete(f.items, id)
		return false
	}
	f.items[id] = true
	return true
}

// Contains reports whether id is a favorite
func (f *Favorites) Contains(id string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.items[id]
}

// List returns the favorites sorted
func (f *Favorites) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]string, 0, len(f.items))
	for id := range f.items {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
