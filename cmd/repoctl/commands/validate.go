package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/cmd/repoctl/internal/clierr"
	"github.com/repoforge/repoforge/internal/compliance"
	"github.com/repoforge/repoforge/internal/plugins"
	"github.com/repoforge/repoforge/internal/watch"
)

type validateOptions struct {
	specPath    string
	strict      bool
	format      string
	withPlugins bool
	watch       bool
}

func NewValidateCommand() *cobra.Command {
	var opts validateOptions

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the repository against its spec",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := clienv.From(cmd.Context())
			format, err := compliance.ParseFormat(opts.format)
			if err != nil {
				return clierr.Usage(err)
			}

			if !opts.watch {
				return runValidate(env, cmd.OutOrStdout(), opts, format)
			}

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			report := func(context.Context) {
				if err := runValidate(env, cmd.OutOrStdout(), opts, format); err != nil {
					env.Log.Warn("validation failed", zap.Error(err))
				}
			}
			report(ctx)
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Watching for changes (Ctrl-C to stop)...")
			return watch.Run(ctx, watch.Config{
				Root:    env.Dir,
				Subdirs: []string{".github", compliance.WorkflowDir},
				Log:     env.Log,
			}, report)
		},
	}

	cmd.Flags().StringVar(&opts.specPath, "spec", "", "path to spec file (default: repoforge.yaml)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "fail on warnings")
	cmd.Flags().StringVar(&opts.format, "format", "text", "output format: text, json or sarif")
	cmd.Flags().BoolVar(&opts.withPlugins, "plugins", false, "also evaluate language plugin rules")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "re-validate whenever files change")
	return cmd
}

func runValidate(env *clienv.Env, w io.Writer, opts validateOptions, format compliance.Format) error {
	s, _, err := env.LoadSpec(opts.specPath)
	if err != nil {
		return err
	}
	existing, err := env.WorkflowFiles()
	if err != nil {
		return err
	}

	res := compliance.Validate(s, existing)
	if opts.withPlugins {
		rules := plugins.Rules(plugins.Registry, s)
		res = res.Merge(compliance.EvaluateRules(rules, os.DirFS(env.Dir)))
	}
	res, err = compliance.ApplyOverrides(res, env.Config.Rules)
	if err != nil {
		return clierr.Usage(err)
	}
	env.Log.Debug("validated",
		zap.Int("violations", len(res.Violations)),
		zap.Bool("valid", res.Valid))

	if err := compliance.Write(w, res, format); err != nil {
		return err
	}
	return validationExit(res, opts.strict)
}

// validationExit maps a result to the command outcome: error violations
// always fail, warnings fail only in strict mode.
func validationExit(res compliance.Result, strict bool) error {
	if !res.Valid {
		return clierr.Newf(clierr.ExitViolation, "validation failed: %d error(s)", res.Count(compliance.SeverityError))
	}
	if strict && len(res.Violations) > 0 {
		return clierr.Newf(clierr.ExitViolation, "validation failed in strict mode: %d warning(s)", res.Count(compliance.SeverityWarn))
	}
	return nil
}
