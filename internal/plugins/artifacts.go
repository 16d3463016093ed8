package plugins

import (
	"github.com/repoforge/repoforge/internal/compliance"
	"github.com/repoforge/repoforge/internal/generator"
	"github.com/repoforge/repoforge/internal/spec"
)

// Artifacts renders every file s calls for: workflows, standard files and
// the output of applicable plugins in list. A plugin file replaces a
// generator file at the same path.
func Artifacts(list []Plugin, s spec.Spec) ([]generator.File, error) {
	files, err := generator.Artifacts(s)
	if err != nil {
		return nil, err
	}
	files = append(files, Generate(list, s)...)

	seen := make(map[string]int, len(files))
	out := make([]generator.File, 0, len(files))
	for _, f := range files {
		if i, ok := seen[f.Path]; ok {
			out[i] = f
			continue
		}
		seen[f.Path] = len(out)
		out = append(out, f)
	}
	return out, nil
}

// Fixes returns, in violation order, a generated file for every violation
// whose missing file Artifacts can produce. Modified-file drift is never
// auto-fixed.
func Fixes(list []Plugin, s spec.Spec, res compliance.Result) ([]generator.File, error) {
	all, err := Artifacts(list, s)
	if err != nil {
		return nil, err
	}
	byPath := make(map[string]generator.File, len(all))
	for _, f := range all {
		byPath[f.Path] = f
	}

	var fixes []generator.File
	seen := map[string]bool{}
	for _, v := range res.Violations {
		f, ok := byPath[v.File]
		if !ok || seen[v.File] || v.Rule == compliance.RuleFileModified {
			continue
		}
		seen[v.File] = true
		fixes = append(fixes, f)
	}
	return fixes, nil
}
