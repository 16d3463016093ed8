// SPDX-License-Identifier: AGPL-3.0-or-later

package policy

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/cmd/repoctl/internal/clierr"
	"github.com/repoforge/repoforge/internal/policy"
	"github.com/repoforge/repoforge/internal/projection"
	"github.com/repoforge/repoforge/internal/spec"
)

// NewPolicyCommand groups the policy pack and inheritance commands.
func NewPolicyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy",
		Short: "Policy packs and organization/team policy inheritance",
	}
	cmd.AddCommand(NewPolicyListCommand())
	cmd.AddCommand(NewPolicyApplyCommand())
	cmd.AddCommand(NewPolicyPackCommand())
	return cmd
}

func NewPolicyListCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the built-in policy packs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			packs := policy.NewRegistry().List()
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(packs)
			}

			rows := make([][]string, 0, len(packs))
			for _, p := range packs {
				st := p.Spec.Standards
				rows = append(rows, []string{p.Name, levelOr(st.CI), levelOr(st.Security), levelOr(st.Releases), p.Description})
			}
			_, _ = fmt.Fprint(out, projection.RenderTable([]string{"Pack", "CI", "Security", "Releases", "Description"}, rows))
			_, _ = fmt.Fprintln(out, "\nUsage: repoctl init --policy <pack> | repoctl policy pack <pack>")
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print packs as JSON")
	return cmd
}

func NewPolicyPackCommand() *cobra.Command {
	var (
		specPath string
		outPath  string
	)

	cmd := &cobra.Command{
		Use:   "pack <name>",
		Short: "Fill the spec's unset standards from a policy pack",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			path := env.SpecPath(specPath)

			data, err := os.ReadFile(path)
			if errors.Is(err, os.ErrNotExist) {
				return clierr.Newf(clierr.ExitViolation, "spec file not found: %s", path)
			}
			if err != nil {
				return err
			}
			raw, err := spec.Parse(data)
			if err != nil {
				return err
			}

			applied, err := policy.NewRegistry().Apply(raw, args[0])
			if errors.Is(err, policy.ErrPackNotFound) {
				return clierr.Usage(err)
			}
			if err != nil {
				return err
			}
			applied = applied.WithDefaults()
			if err := applied.Validate(); err != nil {
				return clierr.Wrapf(clierr.ExitViolation, err, "invalid spec %s", path)
			}

			dest := path
			if outPath != "" {
				dest = env.Path(outPath)
			}
			if err := spec.Save(dest, applied); err != nil {
				return err
			}

			st := applied.Standards
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✓ Applied pack %s to %s (ci=%s security=%s releases=%s)\n",
				args[0], dest, st.CI, st.Security, st.Releases)
			return nil
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "path to spec file (default: repoforge.yaml)")
	cmd.Flags().StringVar(&outPath, "out", "", "write the result here instead of over the spec")
	return cmd
}

func levelOr(l spec.Level) string {
	if l == "" {
		return "not set"
	}
	return string(l)
}
