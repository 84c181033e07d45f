package repo

import (
	"io"

	"github.com/go-git/go-billy/v5"
	"github.com/sirupsen/logrus"

	"github.com/odvcencio/treestore/pkg/object"
)

// DirName is the repository metadata directory inside the working tree.
const DirName = ".treestore"

// Repo represents an opened treestore repository.
type Repo struct {
	RootDir string           // working tree root, empty for in-memory filesystems
	FS      billy.Filesystem // working tree
	Dir     billy.Filesystem // .treestore/ directory
	Store   object.Storer    // content-addressed object store
	Config  *Config

	log logrus.FieldLogger
}

// Option configures Init and Open.
type Option func(*options)

type options struct {
	log    logrus.FieldLogger
	config *Config
}

// WithLogger sets the logger used for repository operations. By default
// nothing is logged.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithConfig sets the configuration written by Init. Open ignores it.
func WithConfig(cfg *Config) Option {
	return func(o *options) { o.config = cfg }
}

func buildOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.log = l
	}
	return o
}

// Logger returns the repository logger.
func (r *Repo) Logger() logrus.FieldLogger {
	return r.log
}
