package repo

import (
	"os"

	"github.com/odvcencio/treestore/pkg/tree"
)

// kindFromFileInfo maps a file's mode to the tree entry kind it is stored
// as. ok is false for files that are not snapshotted (devices, sockets).
func kindFromFileInfo(info os.FileInfo) (tree.Kind, bool) {
	mode := info.Mode()
	switch {
	case mode.IsDir():
		return tree.KindTree, true
	case mode&os.ModeSymlink != 0:
		return tree.KindLink, true
	case mode.IsRegular() && mode&0o111 != 0:
		return tree.KindExecutable, true
	case mode.IsRegular():
		return tree.KindBlob, true
	}
	return 0, false
}

