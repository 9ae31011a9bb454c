// Package cli implements the upctl command line interface: a terminal
// front end over the car-share API covering start/stop rides, costs,
// wear payments, settle-up and per-user stats, and odometer scanning.
package cli

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/upforaride/server/internal/client"
	"github.com/upforaride/server/internal/store"
)

// fileConfig is the optional TOML config file (~/.config/upctl.toml).
type fileConfig struct {
	APIBase string `toml:"api_base"`
	User    string `toml:"user"`
}

var (
	apiBase     string
	defaultUser string

	dataStore *store.Store
)

func loadFileConfig() fileConfig {
	var cfg fileConfig
	home, err := os.UserHomeDir()
	if err != nil {
		return cfg
	}
	path := filepath.Join(home, ".config", "upctl.toml")
	// A missing or malformed file just means defaults.
	toml.DecodeFile(path, &cfg)
	return cfg
}

// NewRootCmd builds the upctl command tree.
func NewRootCmd() *cobra.Command {
	fileCfg := loadFileConfig()

	root := &cobra.Command{
		Use:   "upctl",
		Short: "Shared-car cost tracker CLI",
		Long:  "upctl tracks rides, costs and wear payments for a shared car and computes the settle-up.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if apiBase == "" {
				apiBase = fileCfg.APIBase
			}
			if apiBase == "" {
				apiBase = "http://localhost:8080"
			}
			if defaultUser == "" {
				defaultUser = fileCfg.User
			}
			dataStore = store.New(client.New(apiBase), nil)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&apiBase, "api", os.Getenv("UPCTL_API"), "base URL of the car-share API")
	root.PersistentFlags().StringVar(&defaultUser, "user", os.Getenv("UPCTL_USER"), "acting user id")

	root.AddCommand(newStateCmd())
	root.AddCommand(newSettleCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newStartRideCmd())
	root.AddCommand(newStopRideCmd())
	root.AddCommand(newAddCostCmd())
	root.AddCommand(newAddWearCmd())
	root.AddCommand(newScanCmd())

	return root
}

// Execute runs the CLI.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
