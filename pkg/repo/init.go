package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/sirupsen/logrus"

	"github.com/odvcencio/treestore/pkg/object"
)

// Init creates a new repository in the directory at path. It creates the
// .treestore/ directory with objects/ and config.toml. Returns an error if
// a .treestore/ directory already exists.
func Init(path string, opts ...Option) (*Repo, error) {
	r, err := InitFS(osfs.New(path), opts...)
	if err != nil {
		return nil, err
	}
	r.RootDir = path
	return r, nil
}

// InitFS is Init for an arbitrary billy filesystem.
func InitFS(fs billy.Filesystem, opts ...Option) (*Repo, error) {
	o := buildOptions(opts)

	if _, err := fs.Stat(DirName); err == nil {
		return nil, fmt.Errorf("init: repository already exists at %s", DirName)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("init: stat %s: %w", DirName, err)
	}

	if err := fs.MkdirAll(fs.Join(DirName, "objects"), 0o755); err != nil {
		return nil, fmt.Errorf("init: mkdir: %w", err)
	}
	dir, err := fs.Chroot(DirName)
	if err != nil {
		return nil, fmt.Errorf("init: chroot: %w", err)
	}

	cfg := o.config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := WriteConfig(dir, cfg); err != nil {
		return nil, fmt.Errorf("init: %w", err)
	}
	o.log.WithFields(logrus.Fields{
		"hash":        cfg.Core.Hash,
		"compression": cfg.Core.Compression,
	}).Debug("initialized repository")

	return newRepo(fs, dir, cfg, o)
}

// Open searches upward from path for a .treestore/ directory and opens the
// repository. Returns an error if no .treestore/ directory is found.
func Open(path string, opts ...Option) (*Repo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("open: abs path: %w", err)
	}

	cur := abs
	for {
		info, err := os.Stat(filepath.Join(cur, DirName))
		if err == nil && info.IsDir() {
			r, err := OpenFS(osfs.New(cur), opts...)
			if err != nil {
				return nil, err
			}
			r.RootDir = cur
			return r, nil
		}

		parent := filepath.Dir(cur)
		if parent == cur {
			return nil, fmt.Errorf("open: not a treestore repository (or any parent up to /)")
		}
		cur = parent
	}
}

// OpenFS opens the repository whose working tree is fs.
func OpenFS(fs billy.Filesystem, opts ...Option) (*Repo, error) {
	o := buildOptions(opts)

	info, err := fs.Stat(DirName)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("open: not a treestore repository: missing %s", DirName)
	}
	dir, err := fs.Chroot(DirName)
	if err != nil {
		return nil, fmt.Errorf("open: chroot: %w", err)
	}
	cfg, err := ReadConfig(dir)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	return newRepo(fs, dir, cfg, o)
}

func newRepo(fs, dir billy.Filesystem, cfg *Config, o *options) (*Repo, error) {
	storeOpts, err := cfg.storeOptions()
	if err != nil {
		return nil, err
	}
	o.log.WithFields(logrus.Fields{
		"hash":          cfg.Core.Hash,
		"cache_entries": cfg.Cache.Entries,
	}).Debug("opened object store")

	return &Repo{
		FS:     fs,
		Dir:    dir,
		Store:  object.NewCachedStore(object.NewFileStore(dir, storeOpts...), cfg.Cache.Entries),
		Config: cfg,
		log:    o.log,
	}, nil
}
