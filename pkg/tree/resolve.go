package tree

import (
	"fmt"
	"strings"

	"github.com/odvcencio/treestore/pkg/object"
)

// Resolve finds the entry at a slash-separated path below root, loading
// intermediate subtrees from s. It never writes to s.
func Resolve(s object.Storer, root *Tree, path string) (Entry, error) {
	if root == nil {
		return Entry{}, fmt.Errorf("resolve %q: nil root tree", path)
	}
	segments, err := splitPath(path)
	if err != nil {
		return Entry{}, err
	}

	cur := root
	for i, seg := range segments {
		e, ok := cur.Entry(seg)
		if !ok {
			return Entry{}, fmt.Errorf("resolve %q: %q: %w", path, joinSegments(segments[:i+1]), ErrPathNotFound)
		}
		if i == len(segments)-1 {
			return e, nil
		}
		if !e.IsTree() {
			return Entry{}, fmt.Errorf("resolve %q: %q is a %s: %w", path, joinSegments(segments[:i+1]), e.Kind, ErrNotATree)
		}
		if cur, err = Lookup(s, e.Target); err != nil {
			return Entry{}, fmt.Errorf("resolve %q: %w", path, err)
		}
	}
	panic("unreachable")
}

func splitPath(path string) ([]string, error) {
	if path == "" {
		return nil, fmt.Errorf("resolve: empty path: %w", ErrInvalidPath)
	}
	segments := strings.Split(path, "/")
	for _, seg := range segments {
		if seg == "" {
			return nil, fmt.Errorf("resolve %q: empty path segment: %w", path, ErrInvalidPath)
		}
	}
	return segments, nil
}

func joinSegments(segments []string) string {
	return strings.Join(segments, "/")
}

func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "/" + name
}
