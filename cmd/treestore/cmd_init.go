package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/odvcencio/treestore/pkg/repo"
)

func newInitCmd() *cobra.Command {
	var hashName string
	var compression string

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Create an empty treestore repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "."
			if len(args) > 0 {
				path = args[0]
			}

			abs, err := filepath.Abs(path)
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}
			if err := os.MkdirAll(abs, 0o755); err != nil {
				return fmt.Errorf("create directory: %w", err)
			}

			cfg := repo.DefaultConfig()
			cfg.Core.Hash = hashName
			cfg.Core.Compression = compression
			r, err := repo.Init(abs, repo.WithConfig(cfg), repo.WithLogger(logrus.StandardLogger()))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized empty treestore repository in %s\n", filepath.Join(r.RootDir, repo.DirName)+string(filepath.Separator))
			return nil
		},
	}
	cmd.Flags().StringVar(&hashName, "hash", "sha256", "object hash algorithm (sha256 or blake2b)")
	cmd.Flags().StringVar(&compression, "compression", repo.CompressionZstd, "object compression (zstd or none)")
	return cmd
}
