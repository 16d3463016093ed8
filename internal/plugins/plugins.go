// Package plugins contributes per-language tooling files and repository
// rules. Plugins are plain values in an ordered list; the first applicable
// ones win in list order.
package plugins

import (
	"github.com/repoforge/repoforge/internal/compliance"
	"github.com/repoforge/repoforge/internal/generator"
	"github.com/repoforge/repoforge/internal/spec"
)

// Plugin is a language integration.
type Plugin interface {
	Name() string
	Applicable(s spec.Spec) bool
	Generate(s spec.Spec) []generator.File
	Rules() []compliance.Rule
}

// Registry is the ordered list of built-in plugins.
var Registry = []Plugin{
	nodePlugin{},
	pythonPlugin{},
	goPlugin{},
	rustPlugin{},
}

// Applicable returns the plugins from list that apply to s.
func Applicable(list []Plugin, s spec.Spec) []Plugin {
	var out []Plugin
	for _, p := range list {
		if p.Applicable(s) {
			out = append(out, p)
		}
	}
	return out
}

// Generate collects the files of every applicable plugin.
func Generate(list []Plugin, s spec.Spec) []generator.File {
	var out []generator.File
	for _, p := range Applicable(list, s) {
		out = append(out, p.Generate(s)...)
	}
	return out
}

// Rules collects the rules of every applicable plugin.
func Rules(list []Plugin, s spec.Spec) []compliance.Rule {
	var out []compliance.Rule
	for _, p := range Applicable(list, s) {
		out = append(out, p.Rules()...)
	}
	return out
}
