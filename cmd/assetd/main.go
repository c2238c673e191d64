package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:     "assetd",
		Short:   "assetd — local lifecycle daemon for a single inference asset",
		Version: version,
	}

	root.AddCommand(
		newServeCmd(),
		newEnsureCmd(),
		newStatusCmd(),
		newResetCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
