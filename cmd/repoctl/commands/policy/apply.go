// SPDX-License-Identifier: AGPL-3.0-or-later

package policy

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/cmd/repoctl/internal/clierr"
	"github.com/repoforge/repoforge/internal/policy"
	"github.com/repoforge/repoforge/internal/projection"
	"github.com/repoforge/repoforge/internal/spec"
)

func NewPolicyApplyCommand() *cobra.Command {
	var (
		repoSpec   string
		orgPolicy  string
		teamPolicy string
		checkOnly  bool
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Check the repository spec against organization and team policies, merging them in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			out := cmd.OutOrStdout()
			if orgPolicy == "" && teamPolicy == "" {
				return clierr.Usagef("at least one of --org-policy or --team-policy is required")
			}

			repoPath := env.SpecPath(repoSpec)
			repoDoc, err := loadLayer(repoPath, "repository spec")
			if err != nil {
				return err
			}
			org, err := loadOptionalLayer(env, orgPolicy, "organization policy")
			if err != nil {
				return err
			}
			team, err := loadOptionalLayer(env, teamPolicy, "team policy")
			if err != nil {
				return err
			}

			current, err := repoDoc.Spec()
			if err != nil {
				return err
			}
			current = current.WithDefaults()

			// Inherited policy is what the organization and team mandate;
			// the repository spec is checked against it.
			inherited := policy.EffectivePolicy(repoPath, org, team, nil)
			pol, err := inherited.Spec()
			if err != nil {
				return err
			}
			res := policy.CheckCompliance(current, pol)
			env.Log.Debug("policy compliance", zap.Bool("compliant", res.Compliant), zap.Int("violations", len(res.Violations)))

			printHierarchy(out, org, team, repoDoc, policy.EffectivePolicy(repoPath, org, team, repoDoc))

			if res.Compliant {
				_, _ = fmt.Fprintln(out, "\n✓ Repository spec complies with policies")
				return nil
			}
			_, _ = fmt.Fprintf(out, "\n%d compliance issue(s):\n", len(res.Violations))
			for _, v := range res.Violations {
				_, _ = fmt.Fprintf(out, "  • %s\n", v)
			}
			if checkOnly {
				return clierr.New(clierr.ExitViolation, "repository spec does not comply with policies")
			}

			merged, err := policy.DeepMerge(repoDoc, inherited).Spec()
			if err != nil {
				return err
			}
			merged = merged.WithDefaults()
			if err := merged.Validate(); err != nil {
				return clierr.Wrap(clierr.ExitViolation, "merged spec is invalid", err)
			}

			dest := repoPath
			if outPath != "" {
				dest = env.Path(outPath)
			}
			if err := spec.Save(dest, merged); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(out, "\n✓ Policies applied and saved to %s\n", dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&repoSpec, "repo-spec", "", "repository spec (default: repoforge.yaml)")
	cmd.Flags().StringVar(&orgPolicy, "org-policy", "", "organization policy file")
	cmd.Flags().StringVar(&teamPolicy, "team-policy", "", "team policy file")
	cmd.Flags().BoolVar(&checkOnly, "check-only", false, "report issues without writing the merged spec")
	cmd.Flags().StringVar(&outPath, "out", "", "write the merged spec here instead of over the repository spec")
	return cmd
}

func loadLayer(path, label string) (policy.Document, error) {
	doc, err := policy.LoadDocument(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, clierr.Newf(clierr.ExitViolation, "%s not found: %s", label, path)
	}
	return doc, err
}

func loadOptionalLayer(env *clienv.Env, path, label string) (policy.Document, error) {
	if path == "" {
		return nil, nil
	}
	return loadLayer(env.Path(path), label)
}

func printHierarchy(w io.Writer, org, team, repo, effective policy.Document) {
	layers := []struct {
		name string
		doc  policy.Document
	}{
		{"organization", org},
		{"team", team},
		{"repository", repo},
		{"effective", effective},
	}

	var rows [][]string
	for _, l := range layers {
		if l.doc == nil {
			continue
		}
		s, err := l.doc.Spec()
		if err != nil {
			continue
		}
		st := s.Standards
		rows = append(rows, []string{l.name, levelOr(st.CI), levelOr(st.Security), levelOr(st.Releases)})
	}
	_, _ = fmt.Fprintln(w, "Policy hierarchy:")
	_, _ = fmt.Fprint(w, projection.RenderTable([]string{"Level", "CI", "Security", "Releases"}, rows))
}
