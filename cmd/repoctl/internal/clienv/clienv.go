// SPDX-License-Identifier: AGPL-3.0-or-later

// Package clienv carries per-invocation state (working directory, loaded
// config, logger) from the root command down to subcommands.
package clienv

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/repoforge/repoforge/internal/config"
)

// Env is the resolved environment for one command invocation.
type Env struct {
	Dir    string
	Config config.Config
	Log    *zap.Logger
	Getenv func(string) string
	Now    func() time.Time
}

// Default returns an Env rooted at the current directory with a no-op logger.
func Default() *Env {
	return &Env{
		Dir:    ".",
		Config: config.Default(),
		Log:    zap.NewNop(),
		Getenv: os.Getenv,
		Now:    time.Now,
	}
}

// Path resolves p relative to the working directory unless it is absolute.
func (e *Env) Path(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(e.Dir, p)
}

// SpecPath returns the spec path, honoring an explicit flag value first.
func (e *Env) SpecPath(flag string) string {
	if flag != "" {
		return e.Path(flag)
	}
	return e.Path(e.Config.SpecFile())
}

type ctxKey struct{}

// With attaches env to ctx.
func With(ctx context.Context, env *Env) context.Context {
	return context.WithValue(ctx, ctxKey{}, env)
}

// From returns the Env attached to ctx, or Default when there is none.
func From(ctx context.Context) *Env {
	if ctx != nil {
		if env, ok := ctx.Value(ctxKey{}).(*Env); ok {
			return env
		}
	}
	return Default()
}

// NewLogger builds the console logger. Warnings and errors show by default;
// verbose lowers the threshold to debug and quiet raises it to error.
func NewLogger(w io.Writer, verbose, quiet bool) *zap.Logger {
	level := zapcore.WarnLevel
	switch {
	case quiet:
		level = zapcore.ErrorLevel
	case verbose:
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}
