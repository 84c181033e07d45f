package tree

import (
	"errors"
	"fmt"

	"github.com/odvcencio/treestore/pkg/object"
)

var (
	// ErrObjectNotFound is returned when the store has no object for an id.
	ErrObjectNotFound = object.ErrNotFound
	// ErrCorruptObject is returned for bytes that do not decode as a tree.
	ErrCorruptObject = object.ErrCorrupt

	ErrPathNotFound     = errors.New("path not found")
	ErrNotATree         = errors.New("not a tree")
	ErrInvalidPath      = errors.New("invalid path")
	ErrInvalidEntryKind = errors.New("invalid entry kind")
	ErrCancelled        = errors.New("walk cancelled")
	ErrMaxTreeDepth     = errors.New("maximum tree depth exceeded")

	// SkipDir may be returned by a WalkFunc. On a tree entry it skips the
	// entry's children; on any other entry it skips the remaining entries
	// of the containing tree.
	SkipDir = errors.New("skip this directory")
)

func cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}
