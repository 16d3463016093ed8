// SPDX-License-Identifier: AGPL-3.0-or-later

/*
RepoForge - repository governance from a single declarative spec.
repoctl fingerprints a project, generates its CI, security and release
standards, validates the repository against them, and proposes upgrades and
fixes through pull requests.

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/repoforge/repoforge/cmd/repoctl/commands/github"
	"github.com/repoforge/repoforge/cmd/repoctl/commands/policy"
	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/internal/config"
)

// Version is set at build time with -ldflags.
var Version = "0.1.0"

// NewRootCmd constructs the repoctl root Cobra command.
func NewRootCmd() *cobra.Command {
	var (
		verbose    bool
		quiet      bool
		configPath string
		dir        string
	)

	cmd := &cobra.Command{
		Use:           "repoctl",
		Short:         "RepoForge - spec-driven repository governance",
		Long:          "repoctl analyzes repositories, generates CI/security/release standards from a repoforge.yaml spec, and validates compliance locally or on GitHub.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, cfgErr := config.Load(dir, configPath, os.Getenv)

			log := clienv.NewLogger(cmd.ErrOrStderr(), verbose || cfg.Verbose, quiet || cfg.Quiet)
			zap.ReplaceGlobals(log)
			if cfgErr != nil {
				log.Warn("ignoring unreadable config", zap.Error(cfgErr))
			} else if cfg.Path != "" {
				log.Debug("loaded config", zap.String("path", cfg.Path))
			}

			env := &clienv.Env{
				Dir:    dir,
				Config: cfg,
				Log:    log,
				Getenv: os.Getenv,
				Now:    time.Now,
			}
			cmd.SetContext(clienv.With(cmd.Context(), env))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = clienv.From(cmd.Context()).Log.Sync()
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a .repoforgerc file (default: search cwd and parents)")
	cmd.PersistentFlags().StringVar(&dir, "dir", ".", "repository working directory")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of repoctl",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "repoctl version %s\n", Version)
		},
	})

	cmd.AddCommand(NewAnalyzeCommand())
	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewApplyCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewFixCommand())
	cmd.AddCommand(NewUpgradeCommand())
	cmd.AddCommand(NewDriftCommand())
	cmd.AddCommand(NewConfigCommand())
	cmd.AddCommand(policy.NewPolicyCommand())
	cmd.AddCommand(github.NewGitHubCommand())

	return cmd
}
