// Command stackwm is a tiling window manager for X11.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/1broseidon/stackwm/internal/config"
)

var version = "dev"

// configPath is the --config flag shared by every command.
var configPath string

var rootCmd = &cobra.Command{
	Use:           "stackwm",
	Short:         "A tiling window manager for X11",
	Long:          "stackwm manages X11 windows on workspaces, tiles them with layouts and is driven by key bindings, IPC and MCP.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path (default: ~/.config/stackwm/config.yaml)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.LoadResult, error) {
	return config.Load(configPath)
}
