package repo

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-git/go-billy/v5"

	"github.com/odvcencio/treestore/pkg/object"
	"github.com/odvcencio/treestore/pkg/tree"
)

const configFile = "config.toml"

// Compression settings accepted in [core] compression.
const (
	CompressionNone = "none"
	CompressionZstd = "zstd"
)

// Config stores repository-local settings, persisted as TOML in
// .treestore/config.toml.
type Config struct {
	Core  CoreConfig  `toml:"core"`
	Cache CacheConfig `toml:"cache"`
	Walk  WalkConfig  `toml:"walk"`
}

// CoreConfig selects how objects are named and written. Hash must not be
// changed once objects exist.
type CoreConfig struct {
	Hash        string `toml:"hash"`
	Compression string `toml:"compression"`
}

// CacheConfig sizes the in-process object cache. Zero disables it.
type CacheConfig struct {
	Entries int `toml:"entries"`
}

// WalkConfig holds defaults for tree traversals.
type WalkConfig struct {
	Workers  int `toml:"workers"`
	MaxDepth int `toml:"max_depth"`
}

// DefaultConfig returns the settings written by Init.
func DefaultConfig() *Config {
	return &Config{
		Core:  CoreConfig{Hash: object.SHA256.Name(), Compression: CompressionZstd},
		Cache: CacheConfig{Entries: 4096},
		Walk:  WalkConfig{Workers: 4, MaxDepth: tree.DefaultMaxDepth},
	}
}

// Validate reports settings that cannot be used to open a store.
func (c *Config) Validate() error {
	if _, err := object.HasherByName(c.Core.Hash); err != nil {
		return fmt.Errorf("config: core.hash: %w", err)
	}
	switch c.Core.Compression {
	case "", CompressionNone, CompressionZstd:
	default:
		return fmt.Errorf("config: core.compression: unknown value %q", c.Core.Compression)
	}
	if c.Cache.Entries < 0 {
		return fmt.Errorf("config: cache.entries must not be negative")
	}
	if c.Walk.Workers < 0 || c.Walk.MaxDepth < 0 {
		return fmt.Errorf("config: walk settings must not be negative")
	}
	return nil
}

// WalkOptions returns traversal options seeded from the walk settings.
func (c *Config) WalkOptions(blobsOnly bool) tree.WalkOptions {
	return tree.WalkOptions{
		BlobsOnly: blobsOnly,
		Workers:   c.Walk.Workers,
		MaxDepth:  c.Walk.MaxDepth,
	}
}

func (c *Config) storeOptions() ([]object.FileStoreOption, error) {
	h, err := object.HasherByName(c.Core.Hash)
	if err != nil {
		return nil, err
	}
	return []object.FileStoreOption{
		object.WithHasher(h),
		object.WithCompression(c.Core.Compression == CompressionZstd),
	}, nil
}

// ReadConfig reads config.toml from the repository directory fs. A missing
// file yields DefaultConfig; keys absent from the file keep their defaults
// and keys not known to Config are rejected.
func ReadConfig(fs billy.Filesystem) (*Config, error) {
	cfg := DefaultConfig()
	f, err := fs.Open(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("read config: decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("read config: unknown keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteConfig atomically writes config.toml into the repository directory fs.
func WriteConfig(fs billy.Filesystem, cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}

	tmp, err := fs.TempFile(".", ".config-tmp-")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		fs.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := fs.Rename(tmpName, configFile); err != nil {
		fs.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	return nil
}
