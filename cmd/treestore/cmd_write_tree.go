package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

func newWriteTreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "write-tree [dir]",
		Short: "Snapshot the working tree (or a directory in it) into the store",
		Long:  "Snapshot the whole working tree, or dir relative to the current directory.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}
			dir := ""
			if len(args) == 1 {
				if dir, err = repoRelative(r.RootDir, args[0]); err != nil {
					return fmt.Errorf("write-tree: %w", err)
				}
			}
			t, err := r.Snapshot(dir)
			if err != nil {
				return fmt.Errorf("write-tree: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.ID())
			return nil
		},
	}
}

// repoRelative converts a path given on the command line into a
// slash-separated path below root, "" for root itself.
func repoRelative(root, p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the repository at %s", p, root)
	}
	if rel == "." {
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}
