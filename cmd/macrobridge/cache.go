package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the expansion cache",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Drop every cached expansion",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		disk, err := openDiskCache(cfg)
		if err != nil {
			return err
		}
		if err := disk.DropAll(); err != nil {
			return fmt.Errorf("clear %s: %w", disk.Dir(), err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", disk.Dir())
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
}
