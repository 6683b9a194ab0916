package cmd

import (
	"github.com/named-data/closersite/core"
	"github.com/named-data/closersite/face"
	"github.com/named-data/closersite/fw"
	"github.com/named-data/closersite/sim"
	"github.com/named-data/closersite/table"
	"github.com/spf13/cobra"
)

var profiles sim.ProfilerConfig

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a simulation scenario",
	Long: `Run builds the network described by the [sim] section of the configuration,
starts a producer on every server and replays the access trace of every
client, then writes the report.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if configFile != "" {
			if err := core.LoadConfig(configFile); err != nil {
				return err
			}
		}
		c := core.GetConfig()
		flags := cmd.Flags()
		if flags.Changed("ncache") {
			c.Sim.CacheSize, _ = flags.GetInt("ncache")
		}
		if flags.Changed("ntime") {
			c.Sim.Timestamp, _ = flags.GetInt64("ntime")
		}
		if flags.Changed("odds") {
			c.Sim.Odds, _ = flags.GetInt("odds")
		}
		if flags.Changed("report") {
			c.Sim.Report, _ = flags.GetString("report")
		}
		if flags.Changed("routing") {
			c.Sim.Routing, _ = flags.GetString("routing")
		}
		if flags.Changed("seed") {
			c.Sim.Seed, _ = flags.GetInt64("seed")
		}
		if err := c.Validate(); err != nil {
			return err
		}

		if err := core.InitializeLogger(c.Core.LogFile); err != nil {
			return err
		}
		defer core.ShutdownLogger()

		table.Configure()
		face.Configure()
		fw.Configure()

		profiler := sim.NewProfiler(profiles)
		if err := profiler.Start(); err != nil {
			return err
		}

		scenario, err := sim.LoadScenario(c)
		if err != nil {
			profiler.Stop()
			return err
		}
		core.SetLogClock(scenario.Network().Timer().Now)
		report := scenario.Run()
		core.SetLogClock(nil)
		if err := profiler.Stop(); err != nil {
			core.LogWarn("Main", err)
		}

		core.LogInfo("Main", "Completed ", report.Summary.Completed, " of ", report.Summary.Objects,
			" objects, mean fetch time ", report.Summary.MeanFetchTime)
		if c.Sim.Report != "" {
			return report.WriteFile(c.Sim.Report)
		}
		out, err := report.Encode()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("ncache", 0, "content store slots on client nodes")
	runCmd.Flags().Int64("ntime", 0, "Unix timestamp that maps to the start of the trace")
	runCmd.Flags().Int("odds", 0, "percentage of Interests dropped by producers")
	runCmd.Flags().String("report", "", "write the YAML report to this file instead of stdout")
	runCmd.Flags().String("routing", "all", "global routing: all or best")
	runCmd.Flags().Int64("seed", 1, "random seed of the simulation")
	runCmd.Flags().StringVar(&profiles.CpuProfile, "cpu-profile", "", "write a CPU profile to this file")
	runCmd.Flags().StringVar(&profiles.MemProfile, "mem-profile", "", "write a heap profile to this file")
	runCmd.Flags().StringVar(&profiles.BlockProfile, "block-profile", "", "write a block profile to this file")
}
