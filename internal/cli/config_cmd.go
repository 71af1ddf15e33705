// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - The "config" command.
//
// Subcommands:
//   init [--force]   Write the default config to ~/.rigchat/config.toml
//   show             Print the effective config (file, env and flags)
//   path             Print the config file path

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jeranaias/rigchat/internal/config"
)

func newConfigCommand(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the rigchat config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := flags.ConfigPath
			if path == "" {
				p, err := config.ConfigPathTOML()
				if err != nil {
					return NewCommandError("config", "init", "cannot resolve config path", err)
				}
				path = p
			}

			if _, err := os.Stat(path); err == nil && !force {
				return NewCommandError("config", "init", path+" already exists (use --force to overwrite)", nil)
			}

			save := func() error { return config.Save(config.Default()) }
			if flags.ConfigPath != "" {
				save = func() error { return config.SaveTOML(config.Default(), path) }
			}
			if err := save(); err != nil {
				return NewCommandError("config", "init", "cannot write config", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s wrote %s\n", RenderConditional(SuccessStyle, "[OK]"), path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), cfg.String())
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.ConfigPath != "" {
				fmt.Fprintln(cmd.OutOrStdout(), flags.ConfigPath)
				return nil
			}
			path, err := config.ConfigPathTOML()
			if err != nil {
				return NewCommandError("config", "path", "cannot resolve config path", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd, pathCmd)
	return cmd
}
