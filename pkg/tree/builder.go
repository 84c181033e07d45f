package tree

import (
	"fmt"

	"github.com/emirpasic/gods/maps/treemap"

	"github.com/odvcencio/treestore/pkg/object"
)

// Builder accumulates entries for a new Tree. It is not safe for
// concurrent use.
type Builder struct {
	entries *treemap.Map // name -> Entry
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{entries: treemap.NewWithStringComparator()}
}

// NewBuilderFromTree returns a Builder seeded with the entries of t.
func NewBuilderFromTree(t *Tree) *Builder {
	b := NewBuilder()
	for _, e := range t.entries {
		b.entries.Put(e.Name, e)
	}
	return b
}

// Insert adds an entry, replacing any existing entry with the same name.
func (b *Builder) Insert(name string, kind Kind, target object.Hash) error {
	e, err := NewEntry(name, kind, target)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}
	b.entries.Put(name, e)
	return nil
}

// Remove deletes the entry named name.
func (b *Builder) Remove(name string) error {
	if _, found := b.entries.Get(name); !found {
		return fmt.Errorf("remove %q: %w", name, ErrPathNotFound)
	}
	b.entries.Remove(name)
	return nil
}

// Get returns the pending entry named name.
func (b *Builder) Get(name string) (Entry, bool) {
	v, found := b.entries.Get(name)
	if !found {
		return Entry{}, false
	}
	return v.(Entry), true
}

// Len returns the number of pending entries.
func (b *Builder) Len() int {
	return b.entries.Size()
}

// Entries returns the pending entries in canonical tree order.
func (b *Builder) Entries() []Entry {
	out := make([]Entry, 0, b.entries.Size())
	for _, v := range b.entries.Values() {
		out = append(out, v.(Entry))
	}
	sortEntries(out)
	return out
}

// Build encodes the pending entries, writes them to s and returns the
// resulting Tree. The Builder stays usable; later changes never affect the
// returned Tree.
func (b *Builder) Build(s object.Storer) (*Tree, error) {
	entries := b.Entries()
	id, err := s.Put(object.TypeTree, Encode(entries))
	if err != nil {
		return nil, fmt.Errorf("build tree: %w", err)
	}
	return &Tree{id: id, entries: entries}, nil
}
