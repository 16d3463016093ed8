// SPDX-License-Identifier: AGPL-3.0-or-later

package github

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/cmd/repoctl/internal/clierr"
	"github.com/repoforge/repoforge/internal/gateway"
	"github.com/repoforge/repoforge/internal/spec"
	"github.com/repoforge/repoforge/internal/upgrade"
)

func newUpgradeCommand(r *remote) *cobra.Command {
	var (
		target string
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Open a pull request that upgrades the repository's standards version",
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
			if !ok {
				return clierr.Newf(clierr.ExitViolation, "%s has no %s (run 'repoctl github init')", repo, spec.DefaultFileName)
			}

			if target == "" {
				target = upgrade.LatestVersion()
			}
			_, _ = fmt.Fprintf(out, "Current: %s\nTarget:  %s\n", s.Version, target)
			if s.Version == target {
				_, _ = fmt.Fprintln(out, "✓ Already at target version")
				return nil
			}

			g, err := upgrade.Plan(s.Version, target)
			if errors.Is(err, upgrade.ErrInvalidVersion) {
				return clierr.Usage(err)
			}
			if err != nil {
				return err
			}
			next := upgrade.Bump(s, target, env.Now())
			g, err = upgrade.Resolve(g, next, func(p string) (string, bool, error) {
				return gw.FetchFile(ctx, p)
			})
			if err != nil {
				return err
			}

			data, err := spec.Marshal(next)
			if err != nil {
				return err
			}
			files := map[string]string{spec.DefaultFileName: string(data)}
			var reasons []string
			for _, st := range g.Steps {
				reasons = append(reasons, fmt.Sprintf("%s %s: %s", st.Action, st.File, st.Reason))
				switch st.Action {
				case upgrade.ActionCreate, upgrade.ActionModify:
					if st.File != spec.DefaultFileName {
						files[st.File] = st.NewContent
					}
				default:
					env.Log.Warn("step needs a manual change", zap.String("file", st.File), zap.String("action", string(st.Action)))
				}
			}

			_, _ = fmt.Fprintf(out, "%d step(s), %d file(s) to propose\n", len(g.Steps), len(files))
			if dryRun {
				printFiles(out, files)
				_, _ = fmt.Fprintln(out, "\nDry run: no pull request created.")
				return nil
			}

			body := fmt.Sprintf("## RepoForge upgrade\n\nUpgrades standards from %s to %s.\n\n", g.From, g.To)
			if len(reasons) > 0 {
				body += "### Changes\n\n" + bulletList(reasons)
			}
			if meta, ok := upgrade.Metadata(g.To); ok && len(meta.BreakingChanges) > 0 {
				body += "\n### Breaking changes\n\n" + bulletList(meta.BreakingChanges)
			}
			if g.BackupRequired {
				body += "\nThis is a major version upgrade; review carefully before merging.\n"
			}
			return openPR(ctx, out, gw, gateway.PullRequest{
				Title: fmt.Sprintf("repoforge: upgrade specs from %s to %s", g.From, g.To),
				Body:  body,
				Files: files,
			})
		},
	}

	cmd.Flags().StringVar(&target, "to", "", "target version (default: latest)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list the files without opening a pull request")
	return cmd
}
