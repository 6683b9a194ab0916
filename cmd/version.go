package cmd

import (
	"fmt"

	"github.com/named-data/closersite/core"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and exit",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "closersim: NDN closer-site forwarding simulator")
		if core.BuildTime != "" {
			fmt.Fprintln(out, "Version "+core.Version+" (Built "+core.BuildTime+")")
		} else {
			fmt.Fprintln(out, "Version "+core.Version)
		}
		fmt.Fprintln(out, "Released under the terms of the MIT License")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
