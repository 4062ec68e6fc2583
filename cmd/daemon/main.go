// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command obs-hud runs the OBS websocket session daemon.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "obs-hud",
		Short: "OBS websocket session daemon for a producer HUD",
		Long: `obs-hud keeps an authenticated session to OBS Studio's websocket
server, polls the state OBS does not push, and serves the derived producer
view (recording, streaming, bitrate, frame health, audio) as JSON.

Without a subcommand it runs the daemon.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDaemon(configPath)
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("OBSHUD_CONFIG"),
		"path to config file (YAML); env OBSHUD_CONFIG")

	root.AddCommand(
		runCmd(&configPath),
		versionCmd(),
		configCmd(&configPath),
		healthcheckCmd(),
	)
	return root
}
