// SPDX-License-Identifier: AGPL-3.0-or-later

package github

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/cmd/repoctl/internal/clierr"
	"github.com/repoforge/repoforge/internal/projection"
)

// ScanResult is the per-repository outcome of a scan.
type ScanResult struct {
	Repo       string `json:"repo"`
	Accessible bool   `json:"accessible"`
	HasSpec    bool   `json:"hasSpec"`
	Version    string `json:"version,omitempty"`
	Valid      bool   `json:"valid"`
	Violations int    `json:"violations"`
	Error      string `json:"error,omitempty"`
}

func newScanCommand(r *remote) *cobra.Command {
	var (
		repos  []string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Report spec presence and compliance across several repositories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			ctx := cmd.Context()
			if len(repos) == 0 && r.repo != "" {
				repos = []string{r.repo}
			}
			if len(repos) == 0 {
				return clierr.Usagef("--repos is required")
			}

			results := make([]ScanResult, 0, len(repos))
			for _, name := range repos {
				res := ScanResult{Repo: name}
				gw, repo, err := r.open(ctx, env, name)
				if err != nil {
					if clierr.ExitCodeOf(err) == clierr.ExitUsage {
						return err
					}
					res.Error = err.Error()
					results = append(results, res)
					continue
				}
				res.Repo = repo.String()
				res.Accessible = gw.ValidateAccess(ctx)
				if !res.Accessible {
					res.Error = "cannot access repository"
					results = append(results, res)
					continue
				}

				s, ok, err := fetchSpec(ctx, gw)
				res.HasSpec = ok
				if err == nil && ok {
					res.Version = s.Version
					cres, verr := remoteResult(ctx, env, gw, s)
					if verr != nil {
						err = verr
					} else {
						res.Valid = cres.Valid
						res.Violations = len(cres.Violations)
					}
				}
				if err != nil {
					res.Error = err.Error()
					env.Log.Warn("scan failed", zap.String("repo", res.Repo), zap.Error(err))
				}
				results = append(results, res)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(results)
			}

			rows := make([][]string, 0, len(results))
			withSpec := 0
			for _, res := range results {
				if res.HasSpec {
					withSpec++
				}
				rows = append(rows, []string{
					res.Repo, yesNo(res.Accessible), yesNo(res.HasSpec), res.Version,
					validity(res), res.Error,
				})
			}
			_, _ = fmt.Fprint(out, projection.RenderTable([]string{"Repository", "Access", "Spec", "Version", "Status", "Error"}, rows))
			_, _ = fmt.Fprintf(out, "\n%d repositories, %d with spec, %d without\n", len(results), withSpec, len(results)-withSpec)
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&repos, "repos", nil, "comma-separated repositories (name or owner/name)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func validity(r ScanResult) string {
	switch {
	case !r.HasSpec || r.Error != "":
		return "-"
	case r.Valid:
		return fmt.Sprintf("valid (%d)", r.Violations)
	default:
		return fmt.Sprintf("invalid (%d)", r.Violations)
	}
}
