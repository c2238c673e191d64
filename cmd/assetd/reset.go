package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newResetCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear the cached asset and its version record",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			mgr, cleanup, err := buildManager(cfg, false)
			if err != nil {
				return err
			}
			defer cleanup()
			if err := mgr.Reset(); err != nil {
				return err
			}
			fmt.Println("cache slot cleared")
			return nil
		},
	}

	flags.register(cmd)
	return cmd
}
