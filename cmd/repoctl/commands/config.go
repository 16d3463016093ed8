// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/cmd/repoctl/internal/clierr"
	"github.com/repoforge/repoforge/internal/config"
	"github.com/repoforge/repoforge/internal/policy"
)

func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the .repoforgerc configuration file",
	}
	cmd.AddCommand(newConfigInitCommand())
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		packName       string
		owner          string
		specPath       string
		autoFix        bool
		verboseDefault bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create or replace .repoforgerc.yaml (an existing file is kept as .bak)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			out := cmd.OutOrStdout()

			c := config.Default()
			if packName != "" {
				if _, ok := policy.NewRegistry().Get(packName); !ok {
					return clierr.Usagef("%v: %s", policy.ErrPackNotFound, packName)
				}
				c.DefaultPolicy = packName
			}
			if specPath != "" {
				c.SpecPath = specPath
			}
			c.GitHub.Owner = owner
			c.AutoFix = autoFix
			c.Verbose = verboseDefault

			path := env.Path(config.FileNames[0])
			if err := config.Write(path, c); err != nil {
				return err
			}

			data, err := yaml.Marshal(c)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "✓ Wrote %s\n\n%s\n", path, data)
			_, _ = fmt.Fprintln(out, "Store the GitHub token in GITHUB_TOKEN rather than in this file.")
			return nil
		},
	}

	cmd.Flags().StringVar(&packName, "policy", "", "default policy pack (startup, saas, enterprise, oss)")
	cmd.Flags().StringVar(&owner, "owner", "", "default GitHub organization or user")
	cmd.Flags().StringVar(&specPath, "spec", "", "default spec path")
	cmd.Flags().BoolVar(&autoFix, "auto-fix", false, "enable auto-fix by default")
	cmd.Flags().BoolVar(&verboseDefault, "verbose-default", false, "enable verbose logging by default")
	return cmd
}
