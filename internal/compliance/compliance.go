// SPDX-License-Identifier: AGPL-3.0-or-later

// Package compliance checks a repository against its spec: required
// artifacts, content drift from a baseline, and language plugin rules.
package compliance

import (
	"path"
	"sort"

	"github.com/repoforge/repoforge/internal/spec"
)

// WorkflowDir is where required workflow files live.
const WorkflowDir = ".github/workflows"

// Severity grades a violation.
type Severity string

const (
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Rule identifiers.
const (
	RuleProjectDefined   = "project-defined"
	RuleRequiredWorkflow = "required-workflow"
	RuleFileDeleted      = "file-deleted"
	RuleFileModified     = "file-modified"
)

// Violation is a single finding. Violations are recomputed on every call.
type Violation struct {
	File     string   `json:"file"`
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Result is the outcome of a validation.
type Result struct {
	Valid      bool        `json:"valid"`
	Violations []Violation `json:"violations"`
}

// NewResult computes Valid from vs: valid means no error-severity violation.
func NewResult(vs []Violation) Result {
	if vs == nil {
		vs = []Violation{}
	}
	res := Result{Valid: true, Violations: vs}
	for _, v := range vs {
		if v.Severity == SeverityError {
			res.Valid = false
			break
		}
	}
	return res
}

// Merge combines two results.
func (r Result) Merge(other Result) Result {
	vs := make([]Violation, 0, len(r.Violations)+len(other.Violations))
	vs = append(vs, r.Violations...)
	vs = append(vs, other.Violations...)
	return NewResult(vs)
}

// Count returns the number of violations of the given severity.
func (r Result) Count(sev Severity) int {
	n := 0
	for _, v := range r.Violations {
		if v.Severity == sev {
			n++
		}
	}
	return n
}

// FileSet is a set of repository-relative, slash-separated paths.
type FileSet map[string]struct{}

// NewFileSet builds a set from paths.
func NewFileSet(paths ...string) FileSet {
	fs := make(FileSet, len(paths))
	for _, p := range paths {
		fs[p] = struct{}{}
	}
	return fs
}

// Has reports whether p is in the set.
func (f FileSet) Has(p string) bool {
	_, ok := f[p]
	return ok
}

// requiredWorkflows maps a CI level to the workflow files it requires.
// strict and enforced share a file set; they differ in severity only.
var requiredWorkflows = map[spec.Level][]string{
	spec.LevelPermissive: {"ci.yml"},
	spec.LevelStrict:     {"ci.yml", "security.yml"},
	spec.LevelEnforced:   {"ci.yml", "security.yml"},
}

// RequiredWorkflows returns the workflow paths required at level.
func RequiredWorkflows(level spec.Level) []string {
	names := requiredWorkflows[level]
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = path.Join(WorkflowDir, n)
	}
	return out
}

// SeverityFor returns the severity a missing or drifted artifact carries at
// the given CI level.
func SeverityFor(level spec.Level) Severity {
	if level == spec.LevelEnforced {
		return SeverityError
	}
	return SeverityWarn
}

// Validate checks that s declares a project and that every workflow its CI
// level requires is present in existing.
func Validate(s spec.Spec, existing FileSet) Result {
	var vs []Violation

	if s.Project == nil {
		vs = append(vs, Violation{
			File:     spec.DefaultFileName,
			Rule:     RuleProjectDefined,
			Severity: SeverityError,
			Message:  "Project configuration is required",
		})
	}

	level := s.CILevel()
	sev := SeverityFor(level)
	for _, file := range RequiredWorkflows(level) {
		if existing.Has(file) {
			continue
		}
		vs = append(vs, Violation{
			File:     file,
			Rule:     RuleRequiredWorkflow,
			Severity: sev,
			Message:  "Required workflow file missing: " + file,
		})
	}

	return NewResult(vs)
}

// CheckDrift compares current file contents against a baseline. Deleted and
// modified baseline files are reported; files added since the baseline are
// not. Output is ordered by path.
func CheckDrift(s spec.Spec, baseline, current map[string]string) []Violation {
	sev := SeverityFor(s.CILevel())

	files := make([]string, 0, len(baseline))
	for f := range baseline {
		files = append(files, f)
	}
	sort.Strings(files)

	vs := []Violation{}
	for _, f := range files {
		got, ok := current[f]
		switch {
		case !ok:
			vs = append(vs, Violation{
				File:     f,
				Rule:     RuleFileDeleted,
				Severity: sev,
				Message:  "Required file was deleted: " + f,
			})
		case got != baseline[f]:
			vs = append(vs, Violation{
				File:     f,
				Rule:     RuleFileModified,
				Severity: sev,
				Message:  "File was modified from baseline: " + f,
			})
		}
	}
	return vs
}
