package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/cmd/repoctl/internal/clierr"
	"github.com/repoforge/repoforge/internal/baseline"
	"github.com/repoforge/repoforge/internal/compliance"
	"github.com/repoforge/repoforge/internal/scanner"
)

func NewDriftCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Record and check file content baselines",
	}
	cmd.AddCommand(newDriftSnapshotCommand())
	cmd.AddCommand(newDriftCheckCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Delete the recorded baseline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			if err := baseline.NewStore(env.Path(baseline.DefaultDir)).Reset(); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Baseline removed")
			return nil
		},
	})
	return cmd
}

func newDriftSnapshotCommand() *cobra.Command {
	var include []string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Record the current content of governed files as the baseline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			sc := scanner.New(env.Dir, scanner.WithLogger(env.Log))

			b, err := baseline.Snapshot(cmd.Context(), sc, include, env.Now())
			var perr *scanner.PatternError
			if errors.As(err, &perr) {
				return clierr.Usage(err)
			}
			if err != nil {
				return err
			}
			store := baseline.NewStore(env.Path(baseline.DefaultDir))
			if err := store.Write(b); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Baseline recorded: %d file(s) -> %s\n", len(b.Files), store.Path())
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&include, "include", nil, "glob of files to record (repeatable, default: workflows and standard files)")
	return cmd
}

func newDriftCheckCommand() *cobra.Command {
	var (
		specPath string
		format   string
		strict   bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report files deleted or modified since the baseline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			f, err := compliance.ParseFormat(format)
			if err != nil {
				return clierr.Usage(err)
			}
			s, _, err := env.LoadSpec(specPath)
			if err != nil {
				return err
			}

			store := baseline.NewStore(env.Path(baseline.DefaultDir))
			b, err := store.Read()
			if err != nil {
				return err
			}
			if b == nil {
				return clierr.New(clierr.ExitViolation, "no baseline recorded (run 'repoctl drift snapshot' first)")
			}

			sc := scanner.New(env.Dir, scanner.WithLogger(env.Log))
			current, err := baseline.Current(cmd.Context(), sc, *b)
			if err != nil {
				return err
			}
			res := compliance.NewResult(compliance.CheckDrift(s, b.Files, current))
			res, err = compliance.ApplyOverrides(res, env.Config.Rules)
			if err != nil {
				return clierr.Usage(err)
			}
			if err := compliance.Write(cmd.OutOrStdout(), res, f); err != nil {
				return err
			}
			return validationExit(res, strict)
		},
	}

	cmd.Flags().StringVar(&specPath, "spec", "", "path to spec file (default: repoforge.yaml)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json or sarif")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on warnings")
	return cmd
}
