package main

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/odvcencio/treestore/pkg/object"
	"github.com/odvcencio/treestore/pkg/tree"
)

func newLsTreeCmd() *cobra.Command {
	var recursive, showTrees bool

	cmd := &cobra.Command{
		Use:   "ls-tree [-r] [-t] <tree>",
		Short: "List the entries of a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := object.ParseHash(args[0])
			if err != nil {
				return fmt.Errorf("ls-tree: %w", err)
			}
			r, err := openRepo()
			if err != nil {
				return err
			}
			root, err := r.Tree(id)
			if err != nil {
				return fmt.Errorf("ls-tree: %w", err)
			}

			out := cmd.OutOrStdout()
			if !recursive {
				for _, e := range root.Entries() {
					fmt.Fprintln(out, e)
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			_, err = tree.Walk(ctx, r.Store, root, r.Config.WalkOptions(!showTrees), func(we tree.WalkEntry) error {
				e := we.Entry
				e.Name = we.Path
				_, err := fmt.Fprintln(out, e)
				return err
			})
			if err != nil {
				return fmt.Errorf("ls-tree: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "recurse into subtrees")
	cmd.Flags().BoolVarP(&showTrees, "trees", "t", false, "show tree entries when recursing")
	return cmd
}
