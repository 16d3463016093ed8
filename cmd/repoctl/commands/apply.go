// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/internal/baseline"
	"github.com/repoforge/repoforge/internal/plugins"
	"github.com/repoforge/repoforge/internal/scanner"
)

func NewApplyCommand() *cobra.Command {
	var (
		specPath string
		dryRun   bool
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Generate the files the spec requires and record a drift baseline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			out := cmd.OutOrStdout()
			dryRun = dryRun || env.Config.DryRun

			s, path, err := env.LoadSpec(specPath)
			if err != nil {
				return err
			}
			files, err := plugins.Artifacts(plugins.Registry, s)
			if err != nil {
				return err
			}
			plan, err := planWrites(env, files, force)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(out, "Spec: %s\n", path)
			if dryRun {
				_, _ = fmt.Fprintln(out, "Preview (dry run):")
				plan.print(out)
				return nil
			}

			written, err := env.WriteFiles(plan.files())
			if err != nil {
				return err
			}
			for _, p := range written {
				_, _ = fmt.Fprintf(out, "  ✓ %s\n", p)
			}
			_, _ = fmt.Fprintf(out, "Applied %d file(s), %d unchanged\n", len(written), len(plan.skip))

			sc := scanner.New(env.Dir, scanner.WithLogger(env.Log))
			b, err := baseline.Snapshot(cmd.Context(), sc, nil, env.Now())
			if err != nil {
				return err
			}
			store := baseline.NewStore(env.Path(baseline.DefaultDir))
			if err := store.Write(b); err != nil {
				return err
			}
			env.Log.Debug("baseline recorded", zap.String("path", store.Path()), zap.Int("files", len(b.Files)))
			_, _ = fmt.Fprintf(out, "Baseline recorded: %d file(s)\n", len(b.Files))
			return nil
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "path to spec file (default: repoforge.yaml)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview changes without writing")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite files that already exist")
	return cmd
}
