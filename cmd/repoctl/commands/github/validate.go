// SPDX-License-Identifier: AGPL-3.0-or-later

package github

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/cmd/repoctl/internal/clierr"
	"github.com/repoforge/repoforge/internal/compliance"
	"github.com/repoforge/repoforge/internal/gateway"
	"github.com/repoforge/repoforge/internal/spec"
)

func newValidateCommand(r *remote) *cobra.Command {
	var (
		strict bool
		format string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a GitHub repository against its spec",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			ctx := cmd.Context()
			f, err := compliance.ParseFormat(format)
			if err != nil {
				return clierr.Usage(err)
			}

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

			res, err := remoteResult(ctx, env, gw, s)
			if err != nil {
				return err
			}
			if err := compliance.Write(cmd.OutOrStdout(), res, f); err != nil {
				return err
			}
			if !res.Valid {
				return clierr.Newf(clierr.ExitViolation, "validation failed: %d error(s)", res.Count(compliance.SeverityError))
			}
			if strict && len(res.Violations) > 0 {
				return clierr.Newf(clierr.ExitViolation, "validation failed in strict mode: %d warning(s)", res.Count(compliance.SeverityWarn))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "fail on warnings")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or sarif")
	return cmd
}

// remoteResult validates s against the workflows present on the remote.
func remoteResult(ctx context.Context, env *clienv.Env, gw gateway.Gateway, s spec.Spec) (compliance.Result, error) {
	listed, err := gw.ListFiles(ctx, compliance.WorkflowDir)
	if err != nil {
		return compliance.Result{}, err
	}
	res := compliance.Validate(s, compliance.NewFileSet(listed...))
	res, err = compliance.ApplyOverrides(res, env.Config.Rules)
	if err != nil {
		return compliance.Result{}, clierr.Usage(err)
	}
	return res, nil
}
