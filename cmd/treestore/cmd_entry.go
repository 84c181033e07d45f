package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/treestore/pkg/object"
)

func newEntryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entry <tree> <path>",
		Short: "Print the entry at a slash-separated path below a tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := object.ParseHash(args[0])
			if err != nil {
				return fmt.Errorf("entry: %w", err)
			}
			r, err := openRepo()
			if err != nil {
				return err
			}
			e, err := r.EntryAtPath(id, args[1])
			if err != nil {
				return fmt.Errorf("entry: %w", err)
			}
			e.Name = args[1]
			fmt.Fprintln(cmd.OutOrStdout(), e)
			return nil
		},
	}
}
