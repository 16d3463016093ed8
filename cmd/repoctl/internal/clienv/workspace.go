// SPDX-License-Identifier: AGPL-3.0-or-later

package clienv

import (
	"errors"
	"os"
	"path"

	"go.uber.org/zap"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clierr"
	"github.com/repoforge/repoforge/internal/compliance"
	"github.com/repoforge/repoforge/internal/generator"
	"github.com/repoforge/repoforge/internal/projection"
	"github.com/repoforge/repoforge/internal/spec"
)

// LoadSpec reads and validates the spec named by flag (or the configured
// default). A missing file and a schema failure both exit 1.
func (e *Env) LoadSpec(flag string) (spec.Spec, string, error) {
	p := e.SpecPath(flag)
	s, err := spec.Load(p)
	if errors.Is(err, os.ErrNotExist) {
		return spec.Spec{}, p, clierr.Newf(clierr.ExitViolation, "spec file not found: %s", p)
	}
	if err != nil {
		return spec.Spec{}, p, err
	}
	if err := s.Validate(); err != nil {
		return spec.Spec{}, p, clierr.Wrapf(clierr.ExitViolation, err, "invalid spec %s", p)
	}
	e.Log.Debug("loaded spec", zap.String("path", p), zap.String("version", s.Version))
	return s, p, nil
}

// WorkflowFiles lists the workflow files present under the working directory.
func (e *Env) WorkflowFiles() (compliance.FileSet, error) {
	entries, err := os.ReadDir(e.Path(compliance.WorkflowDir))
	if errors.Is(err, os.ErrNotExist) {
		return compliance.NewFileSet(), nil
	}
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(entries))
	for _, ent := range entries {
		if !ent.IsDir() {
			paths = append(paths, path.Join(compliance.WorkflowDir, ent.Name()))
		}
	}
	return compliance.NewFileSet(paths...), nil
}

// WriteFiles writes generated files under the working directory and returns
// the paths written, in order.
func (e *Env) WriteFiles(files []generator.File) ([]string, error) {
	tree := make(map[string]string, len(files))
	for _, f := range files {
		tree[f.Path] = f.Content
	}
	written, err := projection.WriteTree(e.Dir, tree)
	if err != nil {
		return nil, err
	}
	e.Log.Debug("wrote files", zap.Int("count", len(written)))
	return written, nil
}
