package tree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/odvcencio/treestore/pkg/object"
)

// Kind is the type of object a tree entry points at. The set is closed:
// it is fixed by the serialized mode field.
type Kind uint8

const (
	KindTree Kind = iota + 1
	KindBlob
	KindExecutable
	KindLink
	KindCommit
)

// Git-compatible mode values for each kind.
const (
	ModeTree       uint32 = 0o40000
	ModeBlob       uint32 = 0o100644
	ModeExecutable uint32 = 0o100755
	ModeLink       uint32 = 0o120000
	ModeCommit     uint32 = 0o160000
)

var kindNames = map[Kind]string{
	KindTree:       "tree",
	KindBlob:       "blob",
	KindExecutable: "executable",
	KindLink:       "link",
	KindCommit:     "commit",
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Mode returns the serialized mode of k, or 0 for an invalid kind.
func (k Kind) Mode() uint32 {
	switch k {
	case KindTree:
		return ModeTree
	case KindBlob:
		return ModeBlob
	case KindExecutable:
		return ModeExecutable
	case KindLink:
		return ModeLink
	case KindCommit:
		return ModeCommit
	}
	return 0
}

// ObjectType returns the type of object an entry of kind k targets.
func (k Kind) ObjectType() object.ObjectType {
	switch k {
	case KindTree:
		return object.TypeTree
	case KindCommit:
		return object.TypeCommit
	}
	return object.TypeBlob
}

// KindFromMode maps a serialized mode back to its Kind.
func KindFromMode(mode uint32) (Kind, error) {
	switch mode {
	case ModeTree:
		return KindTree, nil
	case ModeBlob:
		return KindBlob, nil
	case ModeExecutable:
		return KindExecutable, nil
	case ModeLink:
		return KindLink, nil
	case ModeCommit:
		return KindCommit, nil
	}
	return 0, fmt.Errorf("mode %o: %w", mode, ErrInvalidEntryKind)
}

// ParseKind accepts either a kind name ("blob", "tree", ...) or an octal
// mode string ("100644", "40000", ...).
func ParseKind(s string) (Kind, error) {
	s = strings.TrimSpace(s)
	for k, name := range kindNames {
		if s == name {
			return k, nil
		}
	}
	mode, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("kind %q: %w", s, ErrInvalidEntryKind)
	}
	return KindFromMode(uint32(mode))
}

// Entry is one named member of a tree. It is a value type.
type Entry struct {
	Name   string
	Kind   Kind
	Target object.Hash
}

// NewEntry validates its arguments and returns an Entry.
func NewEntry(name string, kind Kind, target object.Hash) (Entry, error) {
	if err := validateName(name); err != nil {
		return Entry{}, err
	}
	if !kind.Valid() {
		return Entry{}, fmt.Errorf("entry %q: %s: %w", name, kind, ErrInvalidEntryKind)
	}
	return Entry{Name: name, Kind: kind, Target: target}, nil
}

// IsTree reports whether e points at a subtree.
func (e Entry) IsTree() bool {
	return e.Kind == KindTree
}

func (e Entry) String() string {
	return fmt.Sprintf("%06o %s %s\t%s", e.Kind.Mode(), e.Kind.ObjectType(), e.Target, e.Name)
}

func validateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("entry name is empty: %w", ErrInvalidPath)
	case name == "." || name == "..":
		return fmt.Errorf("entry name %q is reserved: %w", name, ErrInvalidPath)
	case strings.ContainsAny(name, "/\x00"):
		return fmt.Errorf("entry name %q contains a separator or NUL: %w", name, ErrInvalidPath)
	}
	return nil
}

// compareEntries orders entries byte-wise by name, with tree names compared
// as if they ended in '/'.
func compareEntries(a, b Entry) int {
	return compareNames(a.Name, a.IsTree(), b.Name, b.IsTree())
}

func compareNames(a string, aTree bool, b string, bTree bool) int {
	n := min(len(a), len(b))
	if c := strings.Compare(a[:n], b[:n]); c != 0 {
		return c
	}
	ca, cb := nameTerminator(a, n, aTree), nameTerminator(b, n, bTree)
	switch {
	case ca < cb:
		return -1
	case ca > cb:
		return 1
	}
	return 0
}

func nameTerminator(name string, n int, isTree bool) byte {
	if n < len(name) {
		return name[n]
	}
	if isTree {
		return '/'
	}
	return 0
}
