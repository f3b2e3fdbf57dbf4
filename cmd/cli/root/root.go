package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Cmd is the root of the CLI command tree.
var Cmd = &cobra.Command{
	Use:   "assettrack",
	Short: "AssetTrack inventory CLI",
	Long:  "Command line interface for the AssetTrack inventory and audit API",
}

func Execute() {
	if err := Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
