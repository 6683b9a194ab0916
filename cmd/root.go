package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "closersim",
	Short: "NDN closer-site forwarding simulator",
	Long: `closersim runs a discrete-event simulation of an NDN network in which
routers forward requests for a prefix with the closer-site strategy: flood
until every upstream has answered once, then send each request only to the
upstream with the lowest measured delay.`,
	SilenceUsage: true,
}

// Execute runs the command named by the process arguments.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "TOML configuration file")
}
