// SPDX-License-Identifier: AGPL-3.0-or-later

package github

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/cmd/repoctl/internal/clierr"
	"github.com/repoforge/repoforge/internal/fingerprint"
	"github.com/repoforge/repoforge/internal/gateway"
	"github.com/repoforge/repoforge/internal/generator"
	"github.com/repoforge/repoforge/internal/plugins"
	"github.com/repoforge/repoforge/internal/policy"
	"github.com/repoforge/repoforge/internal/spec"
)

func newInitCommand(r *remote) *cobra.Command {
	var (
		dryRun   bool
		packName string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Open a pull request that adds a generated spec and standard files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			dryRun = dryRun || env.Config.DryRun

			res, err := fingerprint.AnalyzeDir(env.Dir)
			if err != nil {
				return err
			}
			s, err := generator.GenerateSpec(res.Project, env.Now())
			if err != nil {
				return err
			}
			if packName != "" {
				s, err = policy.NewRegistry().Seed(s, packName)
				if errors.Is(err, policy.ErrPackNotFound) {
					return clierr.Usage(err)
				}
				if err != nil {
					return err
				}
			}
			if err := s.Validate(); err != nil {
				return fmt.Errorf("generated spec is invalid: %w", err)
			}

			artifacts, err := plugins.Artifacts(plugins.Registry, s)
			if err != nil {
				return err
			}
			specYAML, err := spec.Marshal(s)
			if err != nil {
				return err
			}
			files := fileMap(artifacts)
			files[spec.DefaultFileName] = string(specYAML)

			_, _ = fmt.Fprintf(out, "Detected: %s (%s), %d file(s) to propose\n", s.Project.Type, s.Project.Language, len(files))
			if dryRun {
				printFiles(out, files)
				_, _ = fmt.Fprintln(out, "\nDry run: no pull request created.")
				return nil
			}

			gw, repo, err := r.connect(ctx, env)
			if err != nil {
				return err
			}
			if _, exists, err := gw.FetchFile(ctx, spec.DefaultFileName); err != nil {
				return err
			} else if exists && !force {
				return clierr.Newf(clierr.ExitViolation, "%s already has %s (use --force to replace it)", repo, spec.DefaultFileName)
			}

			return openPR(ctx, out, gw, gateway.PullRequest{
				Title: "repoforge: initialize repository standards",
				Body: "## RepoForge initialization\n\n" +
					"Adds CI, security and release workflows, repository configuration and documentation generated from the spec below.\n\n" +
					"```yaml\n" + string(specYAML) + "```\n",
				Files: files,
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the files without opening a pull request")
	cmd.Flags().StringVar(&packName, "policy", "", "policy pack to seed standards from")
	cmd.Flags().BoolVar(&force, "force", false, "propose even when the repository already has a spec")
	return cmd
}
