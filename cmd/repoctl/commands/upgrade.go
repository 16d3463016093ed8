// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/cmd/repoctl/internal/clierr"
	"github.com/repoforge/repoforge/internal/projection"
	"github.com/repoforge/repoforge/internal/spec"
	"github.com/repoforge/repoforge/internal/upgrade"
)

var (
	actionStyle = lipgloss.NewStyle().Bold(true)
	noteStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

func NewUpgradeCommand() *cobra.Command {
	var (
		specPath   string
		target     string
		dryRun     bool
		autoBackup bool
		myers      bool
	)

	cmd := &cobra.Command{
		Use:   "upgrade",
		Short: "Upgrade the spec and generated files to a newer standards version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			out := cmd.OutOrStdout()
			dryRun = dryRun || env.Config.DryRun

			s, path, err := env.LoadSpec(specPath)
			if err != nil {
				return err
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
			g, err = upgrade.Resolve(g, next, localReader(env, path))
			if err != nil {
				return err
			}

			differ := upgrade.Differ(upgrade.GenerateFileDiff)
			if myers {
				differ = upgrade.MyersDiff
			}
			printGuide(out, g, differ)

			if dryRun {
				_, _ = fmt.Fprintln(out, "\nDry run complete. No changes applied.")
				return nil
			}

			if g.BackupRequired && autoBackup {
				backup := fmt.Sprintf("%s.backup-%s", path, s.Version)
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				if err := projection.AtomicWrite(backup, data); err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "Backup created: %s\n", backup)
			}

			if err := applyGuide(env, g); err != nil {
				return err
			}
			if err := spec.Save(path, next); err != nil {
				return err
			}
			env.Log.Debug("upgraded", zap.String("from", g.From), zap.String("to", g.To))
			_, _ = fmt.Fprintf(out, "\n✓ Upgraded %s to %s. Review with 'git diff', then run 'repoctl validate'.\n", path, target)
			return nil
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "path to spec file (default: repoforge.yaml)")
	cmd.Flags().StringVar(&target, "to", "", "target version (default: latest)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview the plan and diffs without writing")
	cmd.Flags().BoolVar(&autoBackup, "auto-backup", false, "back up the spec before a major upgrade")
	cmd.Flags().BoolVar(&myers, "myers", false, "show minimal (Myers) diffs instead of positional ones")
	return cmd
}

// localReader reads step files from the working directory. The spec file
// step maps onto the spec actually in use.
func localReader(env *clienv.Env, specFile string) upgrade.ReadFunc {
	return func(p string) (string, bool, error) {
		full := env.Path(p)
		if p == spec.DefaultFileName {
			full = specFile
		}
		data, err := os.ReadFile(full)
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return string(data), true, nil
	}
}

func printGuide(w io.Writer, g upgrade.Guide, differ upgrade.Differ) {
	if meta, ok := upgrade.Metadata(g.To); ok {
		for _, b := range meta.BreakingChanges {
			_, _ = fmt.Fprintf(w, "  breaking: %s\n", b)
		}
		for _, f := range meta.Features {
			_, _ = fmt.Fprintf(w, "  feature:  %s\n", f)
		}
	}
	if len(g.Steps) == 0 {
		_, _ = fmt.Fprintln(w, "\nNo file changes required")
	} else {
		_, _ = fmt.Fprintf(w, "\nChanges required (%d step(s)):\n", len(g.Steps))
	}
	for _, st := range g.Steps {
		_, _ = fmt.Fprintf(w, "\n%s %s\n  Reason: %s\n", actionStyle.Render(string(st.Action)), st.File, st.Reason)
		if st.OldContent != "" && st.NewContent != "" {
			_, _ = fmt.Fprint(w, upgrade.Format(st.File, differ(st.OldContent, st.NewContent)))
		}
	}
	if g.BackupRequired {
		_, _ = fmt.Fprintln(w, noteStyle.Render("\nMajor version upgrade: backup recommended (--auto-backup)."))
	}
}

// applyGuide writes every resolved step except the spec file, which the
// caller saves last.
func applyGuide(env *clienv.Env, g upgrade.Guide) error {
	for _, st := range g.Steps {
		if st.File == spec.DefaultFileName {
			continue
		}
		full := env.Path(st.File)
		switch st.Action {
		case upgrade.ActionCreate, upgrade.ActionModify:
			if err := projection.AtomicWrite(full, []byte(st.NewContent)); err != nil {
				return err
			}
		case upgrade.ActionDelete:
			if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
		case upgrade.ActionManual:
			env.Log.Warn("manual upgrade step", zap.String("file", st.File), zap.String("reason", st.Reason))
		}
	}
	return nil
}
