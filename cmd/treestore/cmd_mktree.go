package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/odvcencio/treestore/pkg/object"
	"github.com/odvcencio/treestore/pkg/tree"
)

func newMktreeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mktree",
		Short: "Build a tree from ls-tree formatted lines on stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := openRepo()
			if err != nil {
				return err
			}

			b := tree.NewBuilder()
			scanner := bufio.NewScanner(cmd.InOrStdin())
			for n := 1; scanner.Scan(); n++ {
				line := strings.TrimRight(scanner.Text(), "\r")
				if strings.TrimSpace(line) == "" {
					continue
				}
				e, err := parseTreeLine(line)
				if err != nil {
					return fmt.Errorf("mktree: line %d: %w", n, err)
				}
				if err := b.Insert(e.Name, e.Kind, e.Target); err != nil {
					return fmt.Errorf("mktree: line %d: %w", n, err)
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("mktree: read input: %w", err)
			}

			t, err := b.Build(r.Store)
			if err != nil {
				return fmt.Errorf("mktree: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), t.ID())
			return nil
		},
	}
}

// parseTreeLine parses "<mode> <type> <hash>\t<name>".
func parseTreeLine(line string) (tree.Entry, error) {
	meta, name, ok := strings.Cut(line, "\t")
	if !ok {
		return tree.Entry{}, fmt.Errorf("missing tab before name in %q", line)
	}
	fields := strings.Fields(meta)
	if len(fields) != 3 {
		return tree.Entry{}, fmt.Errorf("want \"<mode> <type> <hash>\", got %q", meta)
	}
	kind, err := tree.ParseKind(fields[0])
	if err != nil {
		return tree.Entry{}, err
	}
	if object.ObjectType(fields[1]) != kind.ObjectType() {
		return tree.Entry{}, fmt.Errorf("mode %s does not name a %s", fields[0], fields[1])
	}
	h, err := object.ParseHash(fields[2])
	if err != nil {
		return tree.Entry{}, err
	}
	return tree.NewEntry(name, kind, h)
}
