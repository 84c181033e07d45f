package tree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync/atomic"
	"testing"

	"github.com/odvcencio/treestore/pkg/object"
)

func TestWalkScenarioBlobsOnly(t *testing.T) {
	s := newTestStore()
	root, h1, h3 := scenarioTree(t, s)

	entries, err := Walk(context.Background(), s, root, WalkOptions{BlobsOnly: true}, nil)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Walk: got %v, want 2 entries", walkPaths(entries))
	}
	if entries[0].Path != "a.txt" || entries[0].Entry.Target != h1 {
		t.Errorf("entry 0: %+v", entries[0])
	}
	if entries[1].Path != "sub/b.txt" || entries[1].Entry.Target != h3 {
		t.Errorf("entry 1: %+v", entries[1])
	}
}

func TestWalkIncludesTreesParentFirst(t *testing.T) {
	s := newTestStore()
	root, _, _ := scenarioTree(t, s)

	entries, err := Walk(context.Background(), s, root, WalkOptions{}, nil)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{"a.txt", "sub", "sub/b.txt"}
	if got := walkPaths(entries); !slices.Equal(got, want) {
		t.Errorf("Walk: got %v, want %v", got, want)
	}
	if !entries[1].Entry.IsTree() {
		t.Errorf("sub should be a tree entry: %+v", entries[1])
	}
}

// deepTree builds a tree with fanout subdirectories per level and two files
// in each directory.
func deepTree(t *testing.T, s object.Storer, depth, fanout int, prefix string) *Tree {
	t.Helper()
	b := NewBuilder()
	for i := 0; i < 2; i++ {
		name := fmt.Sprintf("f%d.txt", i)
		if err := b.Insert(name, KindBlob, mustBlob(t, s, prefix+name)); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if depth > 0 {
		for i := 0; i < fanout; i++ {
			name := fmt.Sprintf("d%d", i)
			sub := deepTree(t, s, depth-1, fanout, prefix+name+"/")
			if err := b.Insert(name, KindTree, sub.ID()); err != nil {
				t.Fatalf("Insert: %v", err)
			}
		}
	}
	tr, err := b.Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return tr
}

func TestWalkParallelMatchesSequential(t *testing.T) {
	s := newTestStore()
	root := deepTree(t, s, 3, 3, "")

	for _, blobsOnly := range []bool{false, true} {
		seq, err := Walk(context.Background(), s, root, WalkOptions{BlobsOnly: blobsOnly}, nil)
		if err != nil {
			t.Fatalf("sequential Walk: %v", err)
		}
		par, err := Walk(context.Background(), s, root, WalkOptions{BlobsOnly: blobsOnly, Workers: 4}, nil)
		if err != nil {
			t.Fatalf("parallel Walk: %v", err)
		}
		if !slices.Equal(seq, par) {
			t.Errorf("blobsOnly=%v: parallel order differs from sequential", blobsOnly)
		}
		for _, e := range seq {
			if blobsOnly && e.Entry.IsTree() {
				t.Errorf("blobsOnly walk emitted tree %q", e.Path)
			}
		}
	}
}

func TestWalkCountsEveryEntry(t *testing.T) {
	s := newTestStore()
	root := deepTree(t, s, 2, 2, "")
	// Directories: 1 + 2 + 4 = 7, each with 2 files; 6 subtree entries.
	all, err := Walk(context.Background(), s, root, WalkOptions{}, nil)
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(all) != 14+6 {
		t.Errorf("Walk all: got %d entries, want 20", len(all))
	}
	blobs, err := Walk(context.Background(), s, root, WalkOptions{BlobsOnly: true}, nil)
	if err != nil {
		t.Fatalf("Walk blobs: %v", err)
	}
	if len(blobs) != 14 {
		t.Errorf("Walk blobs: got %d entries, want 14", len(blobs))
	}
}

func missingSubtreeRoot(t *testing.T, s object.Storer) *Tree {
	t.Helper()
	h := mustBlob(t, s, "x")
	b := NewBuilder()
	for _, name := range []string{"a.txt", "z.txt"} {
		if err := b.Insert(name, KindBlob, h); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	if err := b.Insert("m", KindTree, object.SHA256.HashBytes([]byte("missing"))); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	root, err := b.Build(s)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return root
}

func TestWalkFailureKeepsPartialResults(t *testing.T) {
	s := newTestStore()
	root := missingSubtreeRoot(t, s)

	for _, workers := range []int{0, 4} {
		var seen []string
		entries, err := Walk(context.Background(), s, root, WalkOptions{Workers: workers}, func(e WalkEntry) error {
			seen = append(seen, e.Path)
			return nil
		})
		if !errors.Is(err, ErrObjectNotFound) {
			t.Fatalf("workers=%d: got %v, want ErrObjectNotFound", workers, err)
		}
		want := []string{"a.txt", "m"}
		if got := walkPaths(entries); !slices.Equal(got, want) {
			t.Errorf("workers=%d: partial entries %v, want %v", workers, got, want)
		}
		if !slices.Equal(seen, want) {
			t.Errorf("workers=%d: callback saw %v, want %v", workers, seen, want)
		}
	}
}

func TestWalkerErrorIsSticky(t *testing.T) {
	s := newTestStore()
	root := missingSubtreeRoot(t, s)
	w := NewWalker(s, root, WalkOptions{BlobsOnly: true})
	defer w.Close()

	ctx := context.Background()
	if e, err := w.Next(ctx); err != nil || e.Path != "a.txt" {
		t.Fatalf("Next: %+v, %v", e, err)
	}
	_, err := w.Next(ctx)
	if !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("Next: got %v, want ErrObjectNotFound", err)
	}
	if _, again := w.Next(ctx); again != err {
		t.Errorf("error not sticky: %v then %v", err, again)
	}
}

func TestWalkerEOF(t *testing.T) {
	s := newTestStore()
	root, _, _ := scenarioTree(t, s)
	w := NewWalker(s, root, WalkOptions{})
	defer w.Close()
	for i := 0; i < 3; i++ {
		if _, err := w.Next(context.Background()); err != nil {
			t.Fatalf("Next %d: %v", i, err)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := w.Next(context.Background()); err != io.EOF {
			t.Errorf("Next after end: got %v, want io.EOF", err)
		}
	}
}

func TestWalkCancelled(t *testing.T) {
	s := newTestStore()
	root := deepTree(t, s, 2, 2, "")

	ctx, cancel := context.WithCancel(context.Background())
	entries, err := Walk(ctx, s, root, WalkOptions{Workers: 2}, func(WalkEntry) error {
		cancel()
		return nil
	})
	if !errors.Is(err, ErrCancelled) || !errors.Is(err, context.Canceled) {
		t.Fatalf("Walk: got %v, want ErrCancelled", err)
	}
	if len(entries) != 1 {
		t.Errorf("Walk after cancel: got %d entries, want 1", len(entries))
	}
}

func TestWalkCallbackError(t *testing.T) {
	s := newTestStore()
	root, _, _ := scenarioTree(t, s)
	stop := errors.New("stop")
	entries, err := Walk(context.Background(), s, root, WalkOptions{}, func(e WalkEntry) error {
		if e.Path == "sub" {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Fatalf("Walk: got %v, want stop", err)
	}
	if got := walkPaths(entries); !slices.Equal(got, []string{"a.txt", "sub"}) {
		t.Errorf("entries: %v", got)
	}
}

func TestWalkSkipDir(t *testing.T) {
	s := newTestStore()
	h := mustBlob(t, s, "x")
	sub := mustTree(t, s, blobEntry("inner.txt", h))
	root := mustTree(t, s,
		blobEntry("a.txt", h),
		treeEntry("skip", sub),
		treeEntry("keep", sub),
	)

	entries, err := Walk(context.Background(), s, root, WalkOptions{}, func(e WalkEntry) error {
		if e.Path == "skip" {
			return SkipDir
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	want := []string{"a.txt", "keep", "keep/inner.txt", "skip"}
	if got := walkPaths(entries); !slices.Equal(got, want) {
		t.Errorf("Walk: got %v, want %v", got, want)
	}

	// SkipDir on a file skips the rest of its directory.
	entries, err = Walk(context.Background(), s, root, WalkOptions{}, func(e WalkEntry) error {
		if e.Path == "a.txt" {
			return SkipDir
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if got := walkPaths(entries); !slices.Equal(got, []string{"a.txt"}) {
		t.Errorf("Walk with file SkipDir: got %v", got)
	}
}

func TestWalkDoesNotDereferenceSubmodules(t *testing.T) {
	s := newTestStore()
	root := mustTree(t, s, Entry{Name: "vendor", Kind: KindCommit, Target: object.SHA256.HashBytes([]byte("c"))})
	for _, blobsOnly := range []bool{false, true} {
		entries, err := Walk(context.Background(), s, root, WalkOptions{BlobsOnly: blobsOnly}, nil)
		if err != nil {
			t.Fatalf("Walk: %v", err)
		}
		if len(entries) != 1 || entries[0].Entry.Kind != KindCommit {
			t.Errorf("blobsOnly=%v: got %v", blobsOnly, walkPaths(entries))
		}
	}
}

// loopStore answers every Get with a tree whose only entry points back at
// itself.
type loopStore struct {
	object.Storer
	data []byte
}

func (l *loopStore) Get(object.Hash) (object.ObjectType, []byte, error) {
	return object.TypeTree, l.data, nil
}

func TestWalkMaxDepth(t *testing.T) {
	s := &loopStore{
		Storer: newTestStore(),
		data:   Encode([]Entry{{Name: "loop", Kind: KindTree, Target: object.ZeroHash}}),
	}
	root, err := Lookup(s, object.ZeroHash)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	entries, err := Walk(context.Background(), s, root, WalkOptions{MaxDepth: 5}, nil)
	if !errors.Is(err, ErrMaxTreeDepth) {
		t.Fatalf("Walk: got %v, want ErrMaxTreeDepth", err)
	}
	if len(entries) != 5 {
		t.Errorf("Walk: got %d entries before depth limit, want 5", len(entries))
	}
}

func TestStreamDeliversResultOnce(t *testing.T) {
	s := newTestStore()
	root, _, _ := scenarioTree(t, s)

	out, done := Stream(context.Background(), s, root, WalkOptions{BlobsOnly: true, Workers: 2})
	var got []string
	for e := range out {
		got = append(got, e.Path)
	}
	res, ok := <-done
	if !ok {
		t.Fatal("result channel closed without a result")
	}
	if res.Err != nil {
		t.Fatalf("Stream: %v", res.Err)
	}
	want := []string{"a.txt", "sub/b.txt"}
	if !slices.Equal(got, want) || !slices.Equal(walkPaths(res.Entries), want) {
		t.Errorf("Stream: streamed %v, result %v, want %v", got, walkPaths(res.Entries), want)
	}
	if _, ok := <-done; ok {
		t.Error("result delivered more than once")
	}
}

func TestStreamFailure(t *testing.T) {
	s := newTestStore()
	root := missingSubtreeRoot(t, s)
	out, done := Stream(context.Background(), s, root, WalkOptions{})
	n := 0
	for range out {
		n++
	}
	res := <-done
	if !errors.Is(res.Err, ErrObjectNotFound) {
		t.Fatalf("Stream: got %v, want ErrObjectNotFound", res.Err)
	}
	if n != len(res.Entries) || n != 2 {
		t.Errorf("streamed %d entries, result holds %d, want 2", n, len(res.Entries))
	}
}

func TestStreamCancel(t *testing.T) {
	s := newTestStore()
	root := deepTree(t, s, 3, 3, "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out, done := Stream(ctx, s, root, WalkOptions{Workers: 3})
	received := 0
	for range out {
		received++
		if received == 3 {
			cancel()
		}
	}
	res := <-done
	if !errors.Is(res.Err, ErrCancelled) {
		t.Fatalf("Stream: got %v, want ErrCancelled", res.Err)
	}
	if len(res.Entries) != received {
		t.Errorf("result holds %d entries, consumer received %d", len(res.Entries), received)
	}
}

// gateStore counts concurrent Get calls.
type gateStore struct {
	object.Storer
	active, peak atomic.Int32
}

func (g *gateStore) Get(h object.Hash) (object.ObjectType, []byte, error) {
	n := g.active.Add(1)
	defer g.active.Add(-1)
	for {
		p := g.peak.Load()
		if n <= p || g.peak.CompareAndSwap(p, n) {
			break
		}
	}
	return g.Storer.Get(h)
}

func TestWalkWorkersBoundConcurrency(t *testing.T) {
	inner := newTestStore()
	root := deepTree(t, inner, 2, 6, "")
	s := &gateStore{Storer: inner}
	if _, err := Walk(context.Background(), s, root, WalkOptions{Workers: 2}, nil); err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if p := s.peak.Load(); p > 2 {
		t.Errorf("peak concurrent fetches %d exceeds workers", p)
	}
}
