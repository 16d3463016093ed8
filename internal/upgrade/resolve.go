// SPDX-License-Identifier: AGPL-3.0-or-later

package upgrade

import (
	"fmt"
	"time"

	"github.com/repoforge/repoforge/internal/generator"
	"github.com/repoforge/repoforge/internal/spec"
)

// ReadFunc returns a file's current content and whether it exists.
type ReadFunc func(path string) (string, bool, error)

// Bump returns s at version target with fresh generation metadata.
func Bump(s spec.Spec, target string, now time.Time) spec.Spec {
	out := s.Clone()
	out.Version = target
	if out.Metadata == nil {
		out.Metadata = &spec.Metadata{}
	}
	out.Metadata.Generated = now.UTC().Format(time.RFC3339)
	out.Metadata.GeneratedBy = generator.Identity
	return out
}

// Resolve fills in OldContent and NewContent for every create and modify
// step of g. The spec file is rendered from next; workflows come from the
// workflow generator; anything else gets the migration placeholder. A
// create step whose file already exists becomes a modify step.
func Resolve(g Guide, next spec.Spec, read ReadFunc) (Guide, error) {
	placeholders := MigrationScript(next, g)
	out := g
	out.Steps = make([]Step, len(g.Steps))

	for i, st := range g.Steps {
		if st.Action == ActionCreate || st.Action == ActionModify || st.Action == ActionDelete {
			old, ok, err := read(st.File)
			if err != nil {
				return Guide{}, fmt.Errorf("reading %s: %w", st.File, err)
			}
			if ok {
				st.OldContent = old
				if st.Action == ActionCreate {
					st.Action = ActionModify
				}
			}
		}
		if st.Action == ActionCreate || st.Action == ActionModify {
			content, err := newContent(next, st.File, placeholders)
			if err != nil {
				return Guide{}, err
			}
			st.NewContent = content
		}
		out.Steps[i] = st
	}
	return out, nil
}

func newContent(next spec.Spec, file string, placeholders map[string]string) (string, error) {
	if file == spec.DefaultFileName {
		data, err := spec.Marshal(next)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if wf, err := generator.Workflow(next, file); err == nil {
		return wf.Content, nil
	}
	return placeholders[file], nil
}
