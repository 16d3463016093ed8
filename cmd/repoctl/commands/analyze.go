// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/internal/fingerprint"
	"github.com/repoforge/repoforge/internal/projection"
)

func NewAnalyzeCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Fingerprint the project and print the detected facts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			res, err := fingerprint.AnalyzeDir(env.Dir)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			p := res.Project
			_, _ = fmt.Fprint(out, projection.RenderTable([]string{"Field", "Value"}, [][]string{
				{"type", string(p.Type)},
				{"language", string(p.Language)},
				{"runtime", string(p.Runtime)},
				{"deployment", string(p.Deployment)},
				{"risk", string(p.Risk)},
			}))
			_, _ = fmt.Fprintf(out, "\nConfidence: %d%%\n", int(res.Confidence*100+0.5))
			if len(res.Patterns) > 0 {
				_, _ = fmt.Fprintln(out, "\nPatterns:")
				_, _ = fmt.Fprint(out, projection.RenderList(res.Patterns))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the fingerprint as JSON")
	return cmd
}
