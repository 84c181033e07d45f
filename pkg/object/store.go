package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-git/go-billy/v5"
)

// FileStore is a content-addressed object store with a 2-character fan-out
// directory layout: objects/ab/cdef0123...
type FileStore struct {
	fs       billy.Filesystem
	hasher   Hasher
	compress bool
}

// FileStoreOption configures a FileStore.
type FileStoreOption func(*FileStore)

// WithHasher selects the hash algorithm. The default is SHA256.
func WithHasher(h Hasher) FileStoreOption {
	return func(s *FileStore) { s.hasher = h }
}

// WithCompression enables zstd compression of newly written objects.
// Reading handles compressed and raw objects regardless.
func WithCompression(enabled bool) FileStoreOption {
	return func(s *FileStore) { s.compress = enabled }
}

// NewFileStore creates a FileStore rooted at fs. The objects/ subdirectory
// is created lazily on first write.
func NewFileStore(fs billy.Filesystem, opts ...FileStoreOption) *FileStore {
	s := &FileStore{fs: fs, hasher: SHA256}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hasher implements Storer.
func (s *FileStore) Hasher() Hasher {
	return s.hasher
}

// objectPath returns the filesystem path for a given hash.
func (s *FileStore) objectPath(h Hash) string {
	hex := h.String()
	return s.fs.Join("objects", hex[:2], hex[2:])
}

// Has reports whether the store contains an object with the given hash.
func (s *FileStore) Has(h Hash) (bool, error) {
	_, err := s.fs.Stat(s.objectPath(h))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("object stat %s: %w", h, err)
}

// Put stores an object and returns its content hash. The on-disk format
// is "type len\0content", optionally zstd-compressed. Writes are atomic:
// data is written to a temp file and then renamed into place.
func (s *FileStore) Put(objType ObjectType, data []byte) (Hash, error) {
	if !objType.Valid() {
		return ZeroHash, fmt.Errorf("object write: unknown type %q", objType)
	}
	h := s.hasher.HashObject(objType, data)

	// Fast path: already exists.
	ok, err := s.Has(h)
	if err != nil {
		return ZeroHash, err
	}
	if ok {
		return h, nil
	}

	raw := append(envelopeHeader(objType, len(data)), data...)
	if s.compress {
		if raw, err = compressZstd(raw); err != nil {
			return ZeroHash, fmt.Errorf("object write compress: %w", err)
		}
	}

	dest := s.objectPath(h)
	dir := s.fs.Join("objects", h.String()[:2])
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return ZeroHash, fmt.Errorf("object write mkdir: %w", err)
	}

	tmp, err := s.fs.TempFile(dir, ".tmp-")
	if err != nil {
		return ZeroHash, fmt.Errorf("object write tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		s.fs.Remove(tmpName)
		return ZeroHash, fmt.Errorf("object write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		s.fs.Remove(tmpName)
		return ZeroHash, fmt.Errorf("object write close: %w", err)
	}
	if err := s.fs.Rename(tmpName, dest); err != nil {
		s.fs.Remove(tmpName)
		return ZeroHash, fmt.Errorf("object write rename: %w", err)
	}
	return h, nil
}

// Get retrieves an object by hash, returning its type and raw content.
// The envelope is re-hashed and a mismatch is reported as ErrCorrupt.
func (s *FileStore) Get(h Hash) (ObjectType, []byte, error) {
	f, err := s.fs.Open(s.objectPath(h))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil, fmt.Errorf("object read %s: %w", h, ErrNotFound)
		}
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	raw, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}

	if isZstdFrame(raw) {
		if raw, err = decompressZstd(raw); err != nil {
			return "", nil, fmt.Errorf("object read %s: decompress: %v: %w", h, err, ErrCorrupt)
		}
	}

	objType, content, err := parseEnvelope(raw)
	if err != nil {
		return "", nil, fmt.Errorf("object read %s: %w", h, err)
	}
	if got := s.hasher.HashObject(objType, content); got != h {
		return "", nil, fmt.Errorf("object read %s: content hashes to %s: %w", h, got, ErrCorrupt)
	}
	return objType, content, nil
}

// parseEnvelope splits "type len\0content" into its parts.
func parseEnvelope(raw []byte) (ObjectType, []byte, error) {
	nulIdx := bytes.IndexByte(raw, 0)
	if nulIdx < 0 {
		return "", nil, fmt.Errorf("invalid format (no NUL): %w", ErrCorrupt)
	}
	header := string(raw[:nulIdx])
	content := raw[nulIdx+1:]

	typ, lenStr, ok := strings.Cut(header, " ")
	if !ok {
		return "", nil, fmt.Errorf("invalid header %q: %w", header, ErrCorrupt)
	}
	objType := ObjectType(typ)
	if !objType.Valid() {
		return "", nil, fmt.Errorf("unknown type %q: %w", typ, ErrCorrupt)
	}
	length, err := strconv.Atoi(lenStr)
	if err != nil {
		return "", nil, fmt.Errorf("invalid length %q: %w", lenStr, ErrCorrupt)
	}
	if len(content) != length {
		return "", nil, fmt.Errorf("length mismatch (header=%d, actual=%d): %w", length, len(content), ErrCorrupt)
	}
	return objType, content, nil
}
