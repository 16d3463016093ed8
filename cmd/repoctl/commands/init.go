// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/cmd/repoctl/internal/clierr"
	"github.com/repoforge/repoforge/internal/fingerprint"
	"github.com/repoforge/repoforge/internal/generator"
	"github.com/repoforge/repoforge/internal/plugins"
	"github.com/repoforge/repoforge/internal/policy"
	"github.com/repoforge/repoforge/internal/spec"
)

func NewInitCommand() *cobra.Command {
	var (
		dryRun   bool
		packName string
		force    bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the repository with a generated spec and standard files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			out := cmd.OutOrStdout()
			dryRun = dryRun || env.Config.DryRun

			res, err := fingerprint.AnalyzeDir(env.Dir)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "Detected: %s (%s), confidence %d%%\n",
				res.Project.Type, res.Project.Language, int(res.Confidence*100+0.5))

			s, err := generator.GenerateSpec(res.Project, env.Now())
			if err != nil {
				return err
			}
			if packName != "" {
				s, err = seedPack(s, packName)
				if err != nil {
					return err
				}
				env.Log.Debug("applied policy pack", zap.String("pack", packName))
			}
			if err := s.Validate(); err != nil {
				return fmt.Errorf("generated spec is invalid: %w", err)
			}

			files, err := plugins.Artifacts(plugins.Registry, s)
			if err != nil {
				return err
			}
			plan, err := planWrites(env, files, force)
			if err != nil {
				return err
			}

			specPath := env.SpecPath("")
			_, statErr := os.Stat(specPath)
			specExists := !errors.Is(statErr, os.ErrNotExist)

			if dryRun {
				_, _ = fmt.Fprintln(out, "\nPreview (dry run):")
				_, _ = fmt.Fprintf(out, "  + %s\n", spec.DefaultFileName)
				plan.print(out)
				_, _ = fmt.Fprintln(out, "\nNo changes applied.")
				return nil
			}
			if specExists && !force {
				return clierr.Newf(clierr.ExitViolation, "%s already exists (use --force to regenerate)", specPath)
			}

			if err := spec.Save(specPath, s); err != nil {
				return err
			}
			written, err := env.WriteFiles(plan.files())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "\nWrote %s and %d file(s)\n", specPath, len(written))
			for _, p := range written {
				_, _ = fmt.Fprintf(out, "  ✓ %s\n", p)
			}
			if len(plan.skip) > 0 {
				_, _ = fmt.Fprintf(out, "Skipped %d existing file(s)\n", len(plan.skip))
			}
			_, _ = fmt.Fprintln(out, "\nNext: review with 'git diff', then run 'repoctl validate'.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview changes without writing")
	cmd.Flags().StringVar(&packName, "policy", "", "policy pack to seed standards from (startup, saas, enterprise, oss)")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing spec and generated files")
	return cmd
}

func seedPack(s spec.Spec, name string) (spec.Spec, error) {
	out, err := policy.NewRegistry().Seed(s, name)
	if errors.Is(err, policy.ErrPackNotFound) {
		return spec.Spec{}, clierr.Usage(err)
	}
	return out, err
}
