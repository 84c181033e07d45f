package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/treestore/pkg/object"
)

func newHashObjectCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "hash-object [-w] <file>...",
		Short: "Compute blob ids for files, optionally writing them",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasher := object.SHA256
			var store object.Storer
			r, err := openRepo()
			switch {
			case err == nil:
				hasher = r.Store.Hasher()
				store = r.Store
			case write:
				return err
			}

			out := cmd.OutOrStdout()
			for _, name := range args {
				data, err := os.ReadFile(name)
				if err != nil {
					return fmt.Errorf("hash-object: %w", err)
				}
				var h object.Hash
				if write {
					if h, err = store.Put(object.TypeBlob, data); err != nil {
						return fmt.Errorf("hash-object %s: %w", name, err)
					}
				} else {
					h = hasher.HashObject(object.TypeBlob, data)
				}
				fmt.Fprintln(out, h)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write the blobs into the object store")
	return cmd
}
