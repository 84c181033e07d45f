// Package tree implements content-addressed directory snapshots: an
// immutable Tree of named entries, a Builder to create them, path
// resolution and depth-first walking over nested trees.
package tree

import (
	"fmt"
	"sort"

	"github.com/odvcencio/treestore/pkg/object"
)

// Tree is an immutable, canonically ordered set of entries identified by
// the hash of its encoding.
type Tree struct {
	id      object.Hash
	entries []Entry
}

// ID returns the tree's content hash.
func (t *Tree) ID() object.Hash {
	return t.id
}

// Len returns the number of entries.
func (t *Tree) Len() int {
	return len(t.entries)
}

// Entries returns a copy of the entries in stored order.
func (t *Tree) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Entry returns the direct child named name.
func (t *Tree) Entry(name string) (Entry, bool) {
	// A name sorts differently depending on whether it is a tree, so probe
	// both positions.
	for _, isTree := range [2]bool{false, true} {
		i := sort.Search(len(t.entries), func(i int) bool {
			e := t.entries[i]
			return compareNames(e.Name, e.IsTree(), name, isTree) >= 0
		})
		if i < len(t.entries) && t.entries[i].Name == name {
			return t.entries[i], true
		}
	}
	return Entry{}, false
}

// Lookup fetches and decodes the tree stored under id.
func Lookup(s object.Storer, id object.Hash) (*Tree, error) {
	objType, data, err := s.Get(id)
	if err != nil {
		return nil, fmt.Errorf("lookup tree %s: %w", id, err)
	}
	if objType != object.TypeTree {
		return nil, fmt.Errorf("lookup tree %s: object is a %s: %w", id, objType, ErrCorruptObject)
	}
	entries, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("lookup tree %s: %w", id, err)
	}
	return &Tree{id: id, entries: entries}, nil
}

// EmptyID returns the id of the tree with no entries under hasher h.
func EmptyID(h object.Hasher) object.Hash {
	return h.HashObject(object.TypeTree, nil)
}
