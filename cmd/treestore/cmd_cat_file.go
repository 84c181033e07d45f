package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/treestore/pkg/object"
	"github.com/odvcencio/treestore/pkg/tree"
)

func newCatFileCmd() *cobra.Command {
	var showType, pretty bool

	cmd := &cobra.Command{
		Use:   "cat-file (-t | -p) <hash>",
		Short: "Print an object's type or contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if showType == pretty {
				return errors.New("cat-file: exactly one of -t or -p is required")
			}
			h, err := object.ParseHash(args[0])
			if err != nil {
				return fmt.Errorf("cat-file: %w", err)
			}
			r, err := openRepo()
			if err != nil {
				return err
			}
			typ, data, err := r.Store.Get(h)
			if err != nil {
				return fmt.Errorf("cat-file %s: %w", h, err)
			}

			out := cmd.OutOrStdout()
			if showType {
				fmt.Fprintln(out, typ)
				return nil
			}
			if typ != object.TypeTree {
				_, err := out.Write(data)
				return err
			}
			entries, err := tree.Decode(data)
			if err != nil {
				return fmt.Errorf("cat-file %s: %w", h, err)
			}
			for _, e := range entries {
				fmt.Fprintln(out, e)
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showType, "type", "t", false, "print the object type")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "print the object contents")
	return cmd
}
