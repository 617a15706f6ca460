package cmd

import (
	"log/slog"
	"os"

	"github.com/encodeous/loom/core"
	"github.com/encodeous/loom/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the router",
	Long:  `This will run the routing agent on the current host using the configuration file.`,
	Run: func(cmd *cobra.Command, args []string) {
		var cfg state.Config
		file, err := os.ReadFile(configPath)
		if err != nil {
			panic(err)
		}
		err = yaml.Unmarshal(file, &cfg)
		if err != nil {
			panic(err)
		}

		err = cfg.ApplyDefaults()
		if err != nil {
			panic(err)
		}
		err = state.ConfigValidator(&cfg)
		if err != nil {
			panic(err)
		}

		level := slog.LevelInfo
		if ok, _ := cmd.Flags().GetBool("verbose"); ok {
			level = slog.LevelDebug
		}

		err = core.Start(cfg, level, nil, state.Hooks{}, nil)
		if err != nil {
			panic(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("verbose", "v", false, "Verbose output")
}
