package tree

import (
	"bytes"
	"fmt"
	"slices"
	"strconv"

	"github.com/odvcencio/treestore/pkg/object"
)

// Encode serializes entries, which must already be in canonical order.
// Each record is:
//
//	<octal mode> SP <name> NUL <32-byte target hash>
//
// The encoding is the hash pre-image of the tree, so it is order
// sensitive and byte exact.
func Encode(entries []Entry) []byte {
	var buf bytes.Buffer
	for _, e := range entries {
		buf.WriteString(strconv.FormatUint(uint64(e.Kind.Mode()), 8))
		buf.WriteByte(' ')
		buf.WriteString(e.Name)
		buf.WriteByte(0)
		buf.Write(e.Target[:])
	}
	return buf.Bytes()
}

// Decode parses serialized tree bytes. Malformed records, unknown modes,
// invalid or duplicate names and out-of-order entries are all reported as
// ErrCorruptObject.
func Decode(data []byte) ([]Entry, error) {
	var (
		entries []Entry
		seen    = make(map[string]struct{})
	)
	for off := 0; off < len(data); {
		sp := bytes.IndexByte(data[off:], ' ')
		if sp <= 0 {
			return nil, fmt.Errorf("decode tree: record at %d: missing mode: %w", off, ErrCorruptObject)
		}
		modeStr := string(data[off : off+sp])
		if modeStr[0] == '0' {
			return nil, fmt.Errorf("decode tree: mode %q has leading zero: %w", modeStr, ErrCorruptObject)
		}
		mode, err := strconv.ParseUint(modeStr, 8, 32)
		if err != nil {
			return nil, fmt.Errorf("decode tree: mode %q: %w", modeStr, ErrCorruptObject)
		}
		kind, err := KindFromMode(uint32(mode))
		if err != nil {
			return nil, fmt.Errorf("decode tree: %v: %w", err, ErrCorruptObject)
		}
		off += sp + 1

		nul := bytes.IndexByte(data[off:], 0)
		if nul < 0 {
			return nil, fmt.Errorf("decode tree: record at %d: unterminated name: %w", off, ErrCorruptObject)
		}
		name := string(data[off : off+nul])
		if err := validateName(name); err != nil {
			return nil, fmt.Errorf("decode tree: %v: %w", err, ErrCorruptObject)
		}
		off += nul + 1

		if len(data)-off < object.HashSize {
			return nil, fmt.Errorf("decode tree: entry %q: truncated hash: %w", name, ErrCorruptObject)
		}
		var target object.Hash
		copy(target[:], data[off:off+object.HashSize])
		off += object.HashSize

		e := Entry{Name: name, Kind: kind, Target: target}
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("decode tree: duplicate entry %q: %w", name, ErrCorruptObject)
		}
		if n := len(entries); n > 0 && compareEntries(entries[n-1], e) >= 0 {
			return nil, fmt.Errorf("decode tree: entry %q out of order after %q: %w", name, entries[n-1].Name, ErrCorruptObject)
		}
		seen[name] = struct{}{}
		entries = append(entries, e)
	}
	return entries, nil
}

func sortEntries(entries []Entry) {
	slices.SortFunc(entries, compareEntries)
}
