package object

import (
	"fmt"
	"sync"
)

type memObject struct {
	typ  ObjectType
	data []byte
}

// MemoryStore keeps objects in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	hasher  Hasher
	objects map[Hash]memObject
}

// NewMemoryStore returns an empty MemoryStore hashing with h.
func NewMemoryStore(h Hasher) *MemoryStore {
	return &MemoryStore{hasher: h, objects: make(map[Hash]memObject)}
}

// Hasher implements Storer.
func (s *MemoryStore) Hasher() Hasher {
	return s.hasher
}

// Put implements Storer.
func (s *MemoryStore) Put(objType ObjectType, data []byte) (Hash, error) {
	if !objType.Valid() {
		return ZeroHash, fmt.Errorf("object write: unknown type %q", objType)
	}
	h := s.hasher.HashObject(objType, data)

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[h]; !ok {
		s.objects[h] = memObject{typ: objType, data: append([]byte(nil), data...)}
	}
	return h, nil
}

// Get implements Storer. The returned slice is a copy.
func (s *MemoryStore) Get(h Hash) (ObjectType, []byte, error) {
	s.mu.RLock()
	obj, ok := s.objects[h]
	s.mu.RUnlock()
	if !ok {
		return "", nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
	}
	return obj.typ, append([]byte(nil), obj.data...), nil
}

// Has implements Storer.
func (s *MemoryStore) Has(h Hash) (bool, error) {
	s.mu.RLock()
	_, ok := s.objects[h]
	s.mu.RUnlock()
	return ok, nil
}

// Len returns the number of stored objects.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}
