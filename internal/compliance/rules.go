// SPDX-License-Identifier: AGPL-3.0-or-later

package compliance

import (
	"errors"
	"io/fs"
)

// Rule is a repository check contributed by a language plugin. Check
// returns nil when the repository satisfies the rule; the error text is
// reported as the violation message otherwise.
type Rule struct {
	ID       string
	File     string
	Severity Severity
	Check    func(fsys fs.FS) error
}

// EvaluateRules runs rules in order against fsys.
func EvaluateRules(rules []Rule, fsys fs.FS) Result {
	var vs []Violation
	for _, r := range rules {
		if err := r.Check(fsys); err != nil {
			sev := r.Severity
			if sev == "" {
				sev = SeverityWarn
			}
			vs = append(vs, Violation{File: r.File, Rule: r.ID, Severity: sev, Message: err.Error()})
		}
	}
	return NewResult(vs)
}

// FileExists is a Rule check that passes when name exists in fsys.
func FileExists(name, message string) func(fs.FS) error {
	return func(fsys fs.FS) error {
		if _, err := fs.Stat(fsys, name); err != nil {
			return errors.New(message)
		}
		return nil
	}
}
