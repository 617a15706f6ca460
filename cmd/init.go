package cmd

import (
	"fmt"
	"os"

	"github.com/encodeous/loom/state"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a router configuration",
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) != 1 {
			_ = cmd.Usage()
			return
		}

		name := args[0]
		err := state.NameValidator(name)
		if err != nil {
			fmt.Printf("Invalid name: %s\n", name)
			os.Exit(-1)
		}

		port, _ := cmd.Flags().GetUint16("port")
		passive, _ := cmd.Flags().GetBool("passive")

		cfg := state.Config{
			Id:   state.RouterId(name),
			Mode: state.ModeActive,
			Port: port,
		}
		if passive {
			cfg.Mode = state.ModePassive
		}

		out, err := yaml.Marshal(&cfg)
		if err != nil {
			panic(err)
		}

		err = os.WriteFile(configPath, out, 0700)
		if err != nil {
			panic(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().Uint16P("port", "p", state.DefaultPort, "UDP port to use")
	initCmd.Flags().Bool("passive", false, "Create a passive agent configuration")
}
