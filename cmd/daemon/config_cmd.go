// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Nicosch44/obs-info-hud/internal/config"
	"github.com/Nicosch44/obs-info-hud/internal/version"
)

const defaultConfigFile = "obs-hud.yaml"

func configCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create, validate or print configuration",
	}
	cmd.AddCommand(configInitCmd(), configValidateCmd(configPath), configDumpCmd(configPath))
	return cmd
}

func configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a config file populated with defaults",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := defaultConfigFile
			if len(args) == 1 {
				path = args[0]
			}
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, os.ErrNotExist) {
					return err
				}
			}
			if err := config.WriteFile(path, config.Defaults()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}

func configValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load the effective configuration and report errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := config.NewLoader(*configPath, version.Version).Load(); err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			source := *configPath
			if source == "" {
				source = "environment and defaults"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s is valid\n", source)
			return nil
		},
	}
}

func configDumpCmd(configPath *string) *cobra.Command {
	var (
		format      string
		showSecrets bool
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the effective configuration (defaults + file + env)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.NewLoader(*configPath, version.Version).Load()
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}

			var out []byte
			switch format {
			case "yaml":
				out, err = config.Marshal(cfg, showSecrets)
			case "json":
				if !showSecrets {
					cfg = config.RedactSecrets(cfg)
				}
				out, err = json.MarshalIndent(cfg, "", "  ")
				out = append(out, '\n')
			default:
				return fmt.Errorf("unknown format %q (yaml or json)", format)
			}
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	cmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "print passwords in clear text")
	return cmd
}
