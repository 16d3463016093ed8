// SPDX-License-Identifier: AGPL-3.0-or-later

package github

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/internal/fingerprint"
	"github.com/repoforge/repoforge/internal/gateway"
	"github.com/repoforge/repoforge/internal/generator"
	"github.com/repoforge/repoforge/internal/plugins"
	"github.com/repoforge/repoforge/internal/spec"
)

func newFixCommand(r *remote) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Open a pull request that adds the files behind spec violations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			dryRun = dryRun || env.Config.DryRun

			gw, repo, err := r.connect(ctx, env)
			if err != nil {
				return err
			}
			s, ok, err := fetchSpec(ctx, gw)
			if err != nil {
				return err
			}
			files := map[string]string{}
			if !ok {
				_, _ = fmt.Fprintf(out, "%s has no %s; generating one from the local project\n", repo, spec.DefaultFileName)
				res, err := fingerprint.AnalyzeDir(env.Dir)
				if err != nil {
					return err
				}
				if s, err = generator.GenerateSpec(res.Project, env.Now()); err != nil {
					return err
				}
				data, err := spec.Marshal(s)
				if err != nil {
					return err
				}
				files[spec.DefaultFileName] = string(data)
			}

			res, err := remoteResult(ctx, env, gw, s)
			if err != nil {
				return err
			}
			if len(res.Violations) == 0 && len(files) == 0 {
				_, _ = fmt.Fprintln(out, "✓ No violations found")
				return nil
			}

			fixes, err := plugins.Fixes(plugins.Registry, s, res)
			if err != nil {
				return err
			}
			for _, f := range fixes {
				files[f.Path] = f.Content
			}
			_, _ = fmt.Fprintf(out, "Found %d violation(s); %d file(s) to propose\n", len(res.Violations), len(files))
			if len(files) == 0 {
				_, _ = fmt.Fprintln(out, "No auto-fixable violations (manual changes required)")
				return nil
			}
			if dryRun {
				printFiles(out, files)
				_, _ = fmt.Fprintln(out, "\nDry run: no pull request created.")
				return nil
			}

			messages := make([]string, 0, len(res.Violations))
			for _, v := range res.Violations {
				messages = append(messages, v.Message)
			}
			return openPR(ctx, out, gw, gateway.PullRequest{
				Title: "repoforge: auto-fix spec violations",
				Body:  "## Auto-fix violations\n\nThis pull request addresses:\n\n" + bulletList(messages),
				Files: files,
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the fixes without opening a pull request")
	return cmd
}
