package tree

import (
	"testing"

	"github.com/odvcencio/treestore/pkg/object"
)

func newTestStore() *object.MemoryStore {
	return object.NewMemoryStore(object.SHA256)
}

func mustBlob(t *testing.T, s object.Storer, content string) object.Hash {
	t.Helper()
	h, err := s.Put(object.TypeBlob, []byte(content))
	if err != nil {
		t.Fatalf("Put blob: %v", err)
	}
	return h
}

func mustTree(t *testing.T, s object.Storer, entries ...Entry) *Tree {
	t.Helper()
	b := NewBuilder()
	for _, e := range entries {
		if err := b.Insert(e.Name, e.Kind, e.Target); err != nil {
			t.Fatalf("Insert %q: %v", e.Name, err)
		}
	}
	tr, err := b.Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tr
}

func blobEntry(name string, h object.Hash) Entry {
	return Entry{Name: name, Kind: KindBlob, Target: h}
}

func treeEntry(name string, tr *Tree) Entry {
	return Entry{Name: name, Kind: KindTree, Target: tr.ID()}
}

// scenarioTree builds:
//
//	a.txt     blob H1
//	sub/      tree H2
//	sub/b.txt blob H3
func scenarioTree(t *testing.T, s object.Storer) (root *Tree, h1, h3 object.Hash) {
	t.Helper()
	h1 = mustBlob(t, s, "a contents")
	h3 = mustBlob(t, s, "b contents")
	sub := mustTree(t, s, blobEntry("b.txt", h3))
	root = mustTree(t, s, blobEntry("a.txt", h1), treeEntry("sub", sub))
	return root, h1, h3
}

func walkPaths(entries []WalkEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}
