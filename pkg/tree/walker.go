package tree

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/odvcencio/treestore/pkg/object"
)

// DefaultMaxDepth bounds nesting when WalkOptions.MaxDepth is unset.
const DefaultMaxDepth = 1024

// WalkOptions controls a traversal.
type WalkOptions struct {
	// BlobsOnly suppresses tree entries. Their children are still visited.
	BlobsOnly bool
	// Workers is the number of concurrent subtree fetches. Values below 2
	// fetch each subtree when the walk reaches it.
	Workers int
	// MaxDepth is the deepest nesting level visited, the root being 1.
	MaxDepth int
}

// WalkEntry is an entry with its slash-joined path from the walk root.
type WalkEntry struct {
	Path  string
	Entry Entry
}

type walkFrame struct {
	tree    *Tree
	pos     int
	base    string
	pending map[int]*subtreeFetch
}

type subtreeFetch struct {
	done chan struct{}
	tree *Tree
	err  error
}

// Walker performs a depth-first pre-order traversal of a tree and its
// subtrees. Entries within one tree are returned in stored order and a
// tree entry is always returned before its children, even when subtrees
// are prefetched concurrently.
//
// It is the caller's responsibility to call Close() when finished with the
// walker.
type Walker struct {
	store    object.Storer
	opts     WalkOptions
	maxDepth int

	stack   []*walkFrame
	descend *walkFrame // parent of the tree entry last returned
	last    WalkEntry
	err     error

	sem    *semaphore.Weighted
	bgCtx  context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWalker returns a Walker over root.
func NewWalker(s object.Storer, root *Tree, opts WalkOptions) *Walker {
	w := &Walker{
		store:    s,
		opts:     opts,
		maxDepth: opts.MaxDepth,
	}
	if w.maxDepth <= 0 {
		w.maxDepth = DefaultMaxDepth
	}
	if opts.Workers > 1 {
		w.sem = semaphore.NewWeighted(int64(opts.Workers))
		w.bgCtx, w.cancel = context.WithCancel(context.Background())
	}
	w.push(root, "")
	return w
}

// Next returns the next entry. After the last entry it returns io.EOF; any
// other error is terminal and is returned by every later call.
func (w *Walker) Next(ctx context.Context) (WalkEntry, error) {
	if w.err != nil {
		return WalkEntry{}, w.err
	}
	if err := ctx.Err(); err != nil {
		return WalkEntry{}, w.fail(cancelled(err))
	}

	if parent := w.descend; parent != nil {
		w.descend = nil
		if err := w.enter(ctx, parent, parent.pos-1); err != nil {
			return WalkEntry{}, w.fail(err)
		}
	}

	for {
		top := len(w.stack) - 1
		if top < 0 {
			w.err = io.EOF
			return WalkEntry{}, io.EOF
		}
		f := w.stack[top]
		if f.pos >= len(f.tree.entries) {
			w.stack = w.stack[:top]
			continue
		}

		i := f.pos
		e := f.tree.entries[i]
		f.pos++

		if e.IsTree() {
			if w.opts.BlobsOnly {
				if err := w.enter(ctx, f, i); err != nil {
					return WalkEntry{}, w.fail(err)
				}
				continue
			}
			w.descend = f
		}
		w.last = WalkEntry{Path: joinPath(f.base, e.Name), Entry: e}
		return w.last, nil
	}
}

// Skip changes how the walk continues after the entry last returned by
// Next. For a tree entry its children are not visited; for any other entry
// the remaining entries of its tree are skipped.
func (w *Walker) Skip() {
	if w.descend != nil {
		w.descend = nil
		return
	}
	if top := len(w.stack) - 1; top >= 0 {
		w.stack[top].pos = len(w.stack[top].tree.entries)
	}
}

// Close stops outstanding prefetches and waits for them to finish. Next
// returns io.EOF after Close unless the walk already failed.
func (w *Walker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.stack = nil
	w.descend = nil
	if w.err == nil {
		w.err = io.EOF
	}
}

func (w *Walker) fail(err error) error {
	w.err = err
	w.stack = nil
	w.descend = nil
	if w.cancel != nil {
		w.cancel()
	}
	return err
}

// enter loads the subtree for entry i of f and pushes it on the stack.
func (w *Walker) enter(ctx context.Context, f *walkFrame, i int) error {
	e := f.tree.entries[i]
	p := joinPath(f.base, e.Name)
	if len(w.stack) >= w.maxDepth {
		return fmt.Errorf("walk %s: depth %d: %w", p, len(w.stack)+1, ErrMaxTreeDepth)
	}

	var (
		sub *Tree
		err error
	)
	if fetch, ok := f.pending[i]; ok {
		delete(f.pending, i)
		select {
		case <-fetch.done:
			sub, err = fetch.tree, fetch.err
		case <-ctx.Done():
			return cancelled(ctx.Err())
		}
	} else {
		sub, err = Lookup(w.store, e.Target)
	}
	if err != nil {
		return fmt.Errorf("walk %s: %w", p, err)
	}
	w.push(sub, p)
	return nil
}

func (w *Walker) push(t *Tree, base string) {
	f := &walkFrame{tree: t, base: base}
	w.stack = append(w.stack, f)
	if w.sem == nil {
		return
	}
	for i, e := range t.entries {
		if !e.IsTree() {
			continue
		}
		if f.pending == nil {
			f.pending = make(map[int]*subtreeFetch)
		}
		f.pending[i] = w.prefetch(e.Target)
	}
}

func (w *Walker) prefetch(id object.Hash) *subtreeFetch {
	fetch := &subtreeFetch{done: make(chan struct{})}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer close(fetch.done)
		if err := w.sem.Acquire(w.bgCtx, 1); err != nil {
			fetch.err = cancelled(err)
			return
		}
		defer w.sem.Release(1)
		fetch.tree, fetch.err = Lookup(w.store, id)
	}()
	return fetch
}
