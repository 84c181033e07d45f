package object

import (
	"encoding/hex"
	"errors"
	"fmt"
)

// HashSize is the length in bytes of every object identifier.
const HashSize = 32

// Hash is a fixed-length binary content digest naming one object.
type Hash [HashSize]byte

// ZeroHash is the all-zero hash. It never names a stored object.
var ZeroHash Hash

// String returns the 64-character lowercase hex form of h.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the zero hash.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// ParseHash decodes a 64-character hex string into a Hash.
func ParseHash(s string) (Hash, error) {
	var h Hash
	if len(s) != HashSize*2 {
		return h, fmt.Errorf("parse hash %q: want %d hex characters, got %d", s, HashSize*2, len(s))
	}
	if _, err := hex.Decode(h[:], []byte(s)); err != nil {
		return h, fmt.Errorf("parse hash %q: %w", s, err)
	}
	return h, nil
}

// ObjectType identifies the kind of object stored.
type ObjectType string

const (
	TypeBlob   ObjectType = "blob"
	TypeTree   ObjectType = "tree"
	TypeCommit ObjectType = "commit"
)

// Valid reports whether t is one of the known object types.
func (t ObjectType) Valid() bool {
	switch t {
	case TypeBlob, TypeTree, TypeCommit:
		return true
	}
	return false
}

var (
	// ErrNotFound is returned when a store holds no object for a hash.
	ErrNotFound = errors.New("object not found")
	// ErrCorrupt is returned when stored bytes cannot be trusted or parsed.
	ErrCorrupt = errors.New("corrupt object")
)

// Storer is a content-addressed object store. Implementations must be safe
// for concurrent use.
type Storer interface {
	// Put stores data under its content hash. Storing bytes that are already
	// present is a no-op success.
	Put(objType ObjectType, data []byte) (Hash, error)
	// Get returns the type and content stored under h, or ErrNotFound.
	Get(h Hash) (ObjectType, []byte, error)
	// Has reports whether an object is stored under h.
	Has(h Hash) (bool, error)
	// Hasher returns the hash function used to derive identifiers.
	Hasher() Hasher
}
