package main

import (
	"github.com/spf13/cobra"
)

func newStatusCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print the cached asset state as JSON",
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
			return printJSON(mgr.Status())
		},
	}

	flags.register(cmd)
	return cmd
}
