package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

func newEnsureCmd() *cobra.Command {
	var flags commonFlags
	var timeoutSec int

	cmd := &cobra.Command{
		Use:   "ensure",
		Short: "Fetch and install the asset if the cache is missing or stale",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.loadConfig()
			if err != nil {
				return err
			}
			mgr, cleanup, err := buildManager(cfg, true)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := context.Background()
			if timeoutSec > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
				defer cancel()
			}
			installed, err := mgr.CheckForUpdate(ctx)
			if err != nil {
				return err
			}
			st := mgr.Status()
			if installed {
				fmt.Printf("installed version %s (%d bytes)\n", st.Asset.VersionID, st.Asset.SizeBytes)
			} else if st.Asset != nil {
				fmt.Printf("up to date: version %s (%d bytes)\n", st.Asset.VersionID, st.Asset.SizeBytes)
			}
			if st.LastWarning != "" {
				fmt.Fprintf(os.Stderr, "warning: %s\n", st.LastWarning)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&timeoutSec, "timeout", 0, "overall timeout in seconds (0 disables)")
	return cmd
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
