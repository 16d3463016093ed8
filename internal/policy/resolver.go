// SPDX-License-Identifier: AGPL-3.0-or-later

package policy

import (
	"fmt"

	"github.com/repoforge/repoforge/internal/spec"
)

// Level is a position in the policy hierarchy.
type Level string

const (
	LevelOrganization Level = "organization"
	LevelTeam         Level = "team"
	LevelRepository   Level = "repository"
)

// precedence lists levels from least to most specific.
var precedence = []Level{LevelOrganization, LevelTeam, LevelRepository}

// Layer is one policy registered at a hierarchy level.
type Layer struct {
	Level  Level
	Source string
	Policy Document
}

// Chain is an immutable, ordered set of layers. With returns a new chain, so
// a Chain value can be shared between callers without coordination.
type Chain struct {
	layers []Layer
}

// NewChain builds a chain from layers in registration order.
func NewChain(layers ...Layer) Chain {
	return Chain{layers: append([]Layer(nil), layers...)}
}

// With returns a chain with l appended.
func (c Chain) With(l Layer) Chain {
	out := make([]Layer, 0, len(c.layers)+1)
	out = append(out, c.layers...)
	return Chain{layers: append(out, l)}
}

// Layers returns a copy of the registered layers.
func (c Chain) Layers() []Layer {
	return append([]Layer(nil), c.layers...)
}

// Resolve folds the chain into one effective policy. Layers at the same level
// merge in registration order, then levels merge organization, team,
// repository. A non-nil override is merged last.
func (c Chain) Resolve(override Document) Document {
	perLevel := make(map[Level]Document, len(precedence))
	for _, l := range c.layers {
		perLevel[l.Level] = DeepMerge(perLevel[l.Level], l.Policy)
	}

	effective := Document{}
	for _, lvl := range precedence {
		if doc, ok := perLevel[lvl]; ok {
			effective = DeepMerge(effective, doc)
		}
	}
	if override != nil {
		effective = DeepMerge(effective, override)
	}
	return effective
}

// EffectivePolicy resolves up to three layers, each optional (nil means
// absent). repoPath is accepted for per-path policy lookup but does not
// influence resolution yet.
func EffectivePolicy(repoPath string, org, team, repo Document) Document {
	_ = repoPath

	var c Chain
	if org != nil {
		c = c.With(Layer{Level: LevelOrganization, Source: string(LevelOrganization), Policy: org})
	}
	if team != nil {
		c = c.With(Layer{Level: LevelTeam, Source: string(LevelTeam), Policy: team})
	}
	if repo != nil {
		c = c.With(Layer{Level: LevelRepository, Source: string(LevelRepository), Policy: repo})
	}
	return c.Resolve(repo)
}

// ComplianceResult is the outcome of CheckCompliance.
type ComplianceResult struct {
	Compliant  bool     `json:"compliant"`
	Violations []string `json:"violations"`
}

// CheckCompliance compares the fields a policy pins against a concrete spec.
// Only standards.ci, standards.security, standards.releases and
// project.language are checked.
func CheckCompliance(s, pol spec.Spec) ComplianceResult {
	res := ComplianceResult{Violations: []string{}}

	check := func(label, want, got string) {
		if want == "" || want == got {
			return
		}
		if got == "" {
			got = "unset"
		}
		res.Violations = append(res.Violations, fmt.Sprintf("%s mismatch: expected %s, got %s", label, want, got))
	}

	check("CI standard", string(pol.Standards.CI), string(s.Standards.CI))
	check("Security standard", string(pol.Standards.Security), string(s.Standards.Security))
	check("Release standard", string(pol.Standards.Releases), string(s.Standards.Releases))
	check("Language", string(pol.Language()), string(s.Language()))

	res.Compliant = len(res.Violations) == 0
	return res
}
