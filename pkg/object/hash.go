package object

import (
	"crypto/sha256"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Hasher derives object identifiers. Both supported algorithms produce
// HashSize-byte digests.
type Hasher struct {
	name string
	new  func() hash.Hash
}

var (
	// SHA256 is the default hasher.
	SHA256 = Hasher{name: "sha256", new: sha256.New}
	// BLAKE2b hashes with BLAKE2b-256.
	BLAKE2b = Hasher{name: "blake2b", new: newBlake2b256}
)

func newBlake2b256() hash.Hash {
	// New256 only fails for keys longer than 64 bytes.
	h, err := blake2b.New256(nil)
	if err != nil {
		panic(err)
	}
	return h
}

// HasherByName returns the hasher registered under name. An empty name
// selects SHA256.
func HasherByName(name string) (Hasher, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", SHA256.name:
		return SHA256, nil
	case BLAKE2b.name:
		return BLAKE2b, nil
	default:
		return Hasher{}, fmt.Errorf("unknown hash algorithm %q", name)
	}
}

// Name returns the algorithm name used in configuration.
func (hr Hasher) Name() string {
	if hr.new == nil {
		return SHA256.name
	}
	return hr.name
}

func (hr Hasher) hash() hash.Hash {
	if hr.new == nil {
		return sha256.New()
	}
	return hr.new()
}

// HashBytes computes the digest of data.
func (hr Hasher) HashBytes(data []byte) Hash {
	d := hr.hash()
	d.Write(data)
	var out Hash
	copy(out[:], d.Sum(nil))
	return out
}

// HashObject computes the digest of the envelope "type len\0content",
// mirroring Git's object hashing.
func (hr Hasher) HashObject(objType ObjectType, data []byte) Hash {
	d := hr.hash()
	d.Write(envelopeHeader(objType, len(data)))
	d.Write(data)
	var out Hash
	copy(out[:], d.Sum(nil))
	return out
}

func envelopeHeader(objType ObjectType, n int) []byte {
	return []byte(fmt.Sprintf("%s %d\x00", objType, n))
}
