package repo

import (
	"context"
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/sirupsen/logrus"

	"github.com/odvcencio/treestore/pkg/object"
	"github.com/odvcencio/treestore/pkg/tree"
)

// FileEntry represents a single non-tree entry in a flattened tree.
type FileEntry struct {
	Path   string
	Kind   tree.Kind
	Target object.Hash
}

// Snapshot records the directory dir of the working tree ("" for the root)
// as a tree, writing every blob and subtree to the store, and returns the
// root tree. Ignored paths and empty directories are left out.
func (r *Repo) Snapshot(dir string) (*tree.Tree, error) {
	ic := NewIgnoreChecker(r.FS)
	t, err := r.snapshotDir(ic, dir)
	if err != nil {
		return nil, err
	}
	r.log.WithFields(logrus.Fields{
		"dir":  dir,
		"tree": t.ID().String(),
	}).Debug("snapshot written")
	return t, nil
}

func (r *Repo) snapshotDir(ic *IgnoreChecker, dir string) (*tree.Tree, error) {
	infos, err := r.FS.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: read dir: %w", dir, err)
	}

	b := tree.NewBuilder()
	for _, info := range infos {
		rel := info.Name()
		if dir != "" {
			rel = r.FS.Join(dir, info.Name())
		}
		if ic.IsIgnored(rel, info.IsDir()) {
			continue
		}
		kind, ok := kindFromFileInfo(info)
		if !ok {
			r.log.WithField("path", rel).Debug("snapshot: skipping special file")
			continue
		}

		var target object.Hash
		switch kind {
		case tree.KindTree:
			sub, err := r.snapshotDir(ic, rel)
			if err != nil {
				return nil, err
			}
			if sub.Len() == 0 {
				continue
			}
			target = sub.ID()
		case tree.KindLink:
			link, err := r.FS.Readlink(rel)
			if err != nil {
				return nil, fmt.Errorf("snapshot %q: readlink: %w", rel, err)
			}
			if target, err = r.Store.Put(object.TypeBlob, []byte(link)); err != nil {
				return nil, fmt.Errorf("snapshot %q: %w", rel, err)
			}
		default:
			if target, err = r.writeFileBlob(rel); err != nil {
				return nil, fmt.Errorf("snapshot %q: %w", rel, err)
			}
		}
		if err := b.Insert(info.Name(), kind, target); err != nil {
			return nil, fmt.Errorf("snapshot %q: %w", rel, err)
		}
	}

	t, err := b.Build(r.Store)
	if err != nil {
		return nil, fmt.Errorf("snapshot %q: %w", dir, err)
	}
	return t, nil
}

func (r *Repo) writeFileBlob(name string) (object.Hash, error) {
	data, err := readFile(r.FS, name)
	if err != nil {
		return object.ZeroHash, err
	}
	return r.Store.Put(object.TypeBlob, data)
}

func readFile(fs billy.Basic, name string) ([]byte, error) {
	f, err := fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Tree loads the tree stored under id.
func (r *Repo) Tree(id object.Hash) (*tree.Tree, error) {
	return tree.Lookup(r.Store, id)
}

// EntryAtPath resolves a slash-separated path below the tree id.
func (r *Repo) EntryAtPath(id object.Hash, relPath string) (tree.Entry, error) {
	root, err := r.Tree(id)
	if err != nil {
		return tree.Entry{}, err
	}
	return tree.Resolve(r.Store, root, relPath)
}

// Flatten walks the tree id and returns every non-tree entry with its full
// path, using the configured walk settings.
func (r *Repo) Flatten(ctx context.Context, id object.Hash) ([]FileEntry, error) {
	root, err := r.Tree(id)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: %w", err)
	}
	entries, err := tree.Walk(ctx, r.Store, root, r.Config.WalkOptions(true), nil)
	if err != nil {
		return nil, fmt.Errorf("flatten tree: %w", err)
	}
	out := make([]FileEntry, 0, len(entries))
	for _, we := range entries {
		out = append(out, FileEntry{Path: we.Path, Kind: we.Entry.Kind, Target: we.Entry.Target})
	}
	return out, nil
}
