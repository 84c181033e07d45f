package object

import (
	"sync"

	"github.com/golang/groupcache/lru"
)

// CachedStore fronts another Storer with a bounded LRU of recently read
// objects. Errors are never cached.
type CachedStore struct {
	inner Storer

	mu    sync.Mutex
	cache *lru.Cache
}

// NewCachedStore wraps inner with an LRU holding up to maxEntries objects.
// A non-positive maxEntries returns inner unchanged.
func NewCachedStore(inner Storer, maxEntries int) Storer {
	if maxEntries <= 0 {
		return inner
	}
	return &CachedStore{inner: inner, cache: lru.New(maxEntries)}
}

// Hasher implements Storer.
func (s *CachedStore) Hasher() Hasher {
	return s.inner.Hasher()
}

// Put implements Storer.
func (s *CachedStore) Put(objType ObjectType, data []byte) (Hash, error) {
	return s.inner.Put(objType, data)
}

// Get implements Storer. Cached content is shared; callers must not modify
// the returned slice.
func (s *CachedStore) Get(h Hash) (ObjectType, []byte, error) {
	s.mu.Lock()
	v, ok := s.cache.Get(h)
	s.mu.Unlock()
	if ok {
		obj := v.(memObject)
		return obj.typ, obj.data, nil
	}

	objType, data, err := s.inner.Get(h)
	if err != nil {
		return "", nil, err
	}
	s.mu.Lock()
	s.cache.Add(h, memObject{typ: objType, data: data})
	s.mu.Unlock()
	return objType, data, nil
}

// Has implements Storer.
func (s *CachedStore) Has(h Hash) (bool, error) {
	s.mu.Lock()
	_, ok := s.cache.Get(h)
	s.mu.Unlock()
	if ok {
		return true, nil
	}
	return s.inner.Has(h)
}
