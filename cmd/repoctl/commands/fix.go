// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/internal/compliance"
	"github.com/repoforge/repoforge/internal/plugins"
	"github.com/repoforge/repoforge/internal/spec"
)

func NewFixCommand() *cobra.Command {
	var (
		specPath string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "fix",
		Short: "Generate the missing files behind spec violations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			out := cmd.OutOrStdout()
			dryRun = dryRun || env.Config.DryRun

			s, _, err := env.LoadSpec(specPath)
			if err != nil {
				return err
			}
			res, err := localResult(env, s)
			if err != nil {
				return err
			}
			if len(res.Violations) == 0 {
				_, _ = fmt.Fprintln(out, "✓ No violations found")
				return nil
			}

			fixes, err := plugins.Fixes(plugins.Registry, s, res)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "Found %d violation(s), %d auto-fixable\n", len(res.Violations), len(fixes))
			if len(fixes) == 0 {
				_, _ = fmt.Fprintln(out, "No auto-fixable violations (manual changes required)")
				return validationExit(res, false)
			}

			if dryRun {
				_, _ = fmt.Fprintln(out, "Files to be created (dry run):")
				for _, f := range fixes {
					_, _ = fmt.Fprintf(out, "  + %s\n", f.Path)
				}
				return nil
			}

			written, err := env.WriteFiles(fixes)
			if err != nil {
				return err
			}
			for _, p := range written {
				_, _ = fmt.Fprintf(out, "  ✓ %s\n", p)
			}

			after, err := localResult(env, s)
			if err != nil {
				return err
			}
			printRemaining(out, after)
			return validationExit(after, false)
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "path to spec file (default: repoforge.yaml)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview fixes without writing")
	return cmd
}

// localResult validates the working directory including plugin rules.
func localResult(env *clienv.Env, s spec.Spec) (compliance.Result, error) {
	existing, err := env.WorkflowFiles()
	if err != nil {
		return compliance.Result{}, err
	}
	res := compliance.Validate(s, existing)
	res = res.Merge(compliance.EvaluateRules(plugins.Rules(plugins.Registry, s), os.DirFS(env.Dir)))
	return compliance.ApplyOverrides(res, env.Config.Rules)
}

func printRemaining(w io.Writer, res compliance.Result) {
	if len(res.Violations) == 0 {
		_, _ = fmt.Fprintln(w, "✓ All violations fixed")
		return
	}
	_, _ = fmt.Fprintf(w, "%d violation(s) remain:\n", len(res.Violations))
	for _, v := range res.Violations {
		_, _ = fmt.Fprintf(w, "  • %s: %s\n", v.File, v.Message)
	}
}
