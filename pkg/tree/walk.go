package tree

import (
	"context"
	"errors"
	"io"

	"github.com/odvcencio/treestore/pkg/object"
)

// WalkFunc is called for each entry visited by Walk. Returning SkipDir
// alters the traversal; any other non-nil error stops it.
type WalkFunc func(WalkEntry) error

// WalkResult is the terminal outcome of a traversal: every entry emitted,
// in order, and the error that ended it (nil on success).
type WalkResult struct {
	Entries []WalkEntry
	Err     error
}

// Walk traverses root and calls fn for every entry. It returns every entry
// it emitted, including when the walk fails part way; entries passed to fn
// are never retracted. fn may be nil.
func Walk(ctx context.Context, s object.Storer, root *Tree, opts WalkOptions, fn WalkFunc) ([]WalkEntry, error) {
	w := NewWalker(s, root, opts)
	defer w.Close()

	var entries []WalkEntry
	for {
		we, err := w.Next(ctx)
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}
		entries = append(entries, we)
		if fn == nil {
			continue
		}
		if err := fn(we); err != nil {
			if errors.Is(err, SkipDir) {
				w.Skip()
				continue
			}
			return entries, err
		}
	}
}

// Stream runs a traversal in its own goroutine. Entries are delivered on
// the first channel, which is closed when the walk ends; then exactly one
// WalkResult is sent on the second channel. The result is only sent after
// every background fetch has stopped.
//
// Callers must drain the entries channel or cancel ctx.
func Stream(ctx context.Context, s object.Storer, root *Tree, opts WalkOptions) (<-chan WalkEntry, <-chan WalkResult) {
	out := make(chan WalkEntry)
	done := make(chan WalkResult, 1)

	go func() {
		w := NewWalker(s, root, opts)
		var res WalkResult
		defer func() {
			w.Close()
			close(out)
			done <- res
			close(done)
		}()

		for {
			we, err := w.Next(ctx)
			if err == io.EOF {
				return
			}
			if err != nil {
				res.Err = err
				return
			}
			select {
			case out <- we:
				res.Entries = append(res.Entries, we)
			case <-ctx.Done():
				res.Err = cancelled(ctx.Err())
				return
			}
		}
	}()

	return out, done
}
