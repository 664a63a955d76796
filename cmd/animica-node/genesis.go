package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/animicaorg/animica-node/node"
)

func newGenesisCmd() *cobra.Command {
	var allocPath string

	cmd := &cobra.Command{
		Use:   "genesis",
		Short: "Seed the account store with a genesis allocation file before first boot",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			allocs, err := node.LoadGenesisAllocs(allocPath)
			if err != nil {
				return err
			}

			store, err := node.OpenBlockStore(cfg.DataDir)
			if err != nil {
				return fmt.Errorf("open block store: %w", err)
			}
			defer store.Close()

			if _, hasHead, err := store.Head(); err != nil {
				return err
			} else if hasHead {
				return fmt.Errorf("genesis: refusing to re-seed a data directory with an existing chain head")
			}

			if err := node.ApplyGenesisAllocs(store, allocs); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d genesis account(s) into %s\n", len(allocs), cfg.DataDir)
			return nil
		},
	}

	cmd.Flags().StringVar(&allocPath, "alloc", "", "path to a JSON genesis allocation file ([{\"address\":...,\"balance\":...}])")
	cmd.MarkFlagRequired("alloc")
	return cmd
}
