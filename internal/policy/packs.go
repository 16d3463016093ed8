// SPDX-License-Identifier: AGPL-3.0-or-later

package policy

import (
	"errors"
	"fmt"

	"github.com/repoforge/repoforge/internal/spec"
)

// ErrPackNotFound is returned when a pack name is not registered.
var ErrPackNotFound = errors.New("policy pack not found")

// Pack is a named bundle of standards defaults.
type Pack struct {
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Version     string    `json:"version" yaml:"version"`
	Spec        spec.Spec `json:"spec" yaml:"spec"`
}

// BuiltinPacks returns the packs every registry starts with.
func BuiltinPacks() []Pack {
	pack := func(name, desc string, ci, sec, rel spec.Level) Pack {
		return Pack{
			Name:        name,
			Description: desc,
			Version:     "1.0.0",
			Spec:        spec.Spec{Standards: spec.Standards{CI: ci, Security: sec, Releases: rel}},
		}
	}
	return []Pack{
		pack("startup", "Minimal standards for fast-moving startups",
			spec.LevelStrict, spec.LevelStrict, spec.LevelPermissive),
		pack("saas", "Production-grade standards for SaaS companies",
			spec.LevelEnforced, spec.LevelEnforced, spec.LevelStrict),
		pack("enterprise", "Enterprise-grade standards for regulated industries",
			spec.LevelEnforced, spec.LevelEnforced, spec.LevelEnforced),
		pack("oss", "Standards for open source projects",
			spec.LevelStrict, spec.LevelStrict, spec.LevelStrict),
	}
}

// Registry is an ordered catalog of packs. It is constructed per use and
// passed explicitly; there is no process-wide instance.
type Registry struct {
	packs []Pack
}

// NewRegistry returns a registry seeded with BuiltinPacks.
func NewRegistry() *Registry {
	r := &Registry{}
	for _, p := range BuiltinPacks() {
		r.Register(p)
	}
	return r
}

// Register adds p, replacing any pack with the same name in place.
func (r *Registry) Register(p Pack) {
	p.Spec = p.Spec.Clone()
	for i := range r.packs {
		if r.packs[i].Name == p.Name {
			r.packs[i] = p
			return
		}
	}
	r.packs = append(r.packs, p)
}

// Get looks up a pack by name.
func (r *Registry) Get(name string) (Pack, bool) {
	for _, p := range r.packs {
		if p.Name == name {
			p.Spec = p.Spec.Clone()
			return p, true
		}
	}
	return Pack{}, false
}

// List returns the packs in registration order.
func (r *Registry) List() []Pack {
	out := make([]Pack, len(r.packs))
	for i, p := range r.packs {
		p.Spec = p.Spec.Clone()
		out[i] = p
	}
	return out
}

// Apply returns a copy of s whose unset standards are taken from the named
// pack. Levels already set on s are never overridden.
func (r *Registry) Apply(s spec.Spec, name string) (spec.Spec, error) {
	p, ok := r.Get(name)
	if !ok {
		return spec.Spec{}, fmt.Errorf("%w: %s", ErrPackNotFound, name)
	}
	out := s.Clone()
	if out.Standards.CI == "" {
		out.Standards.CI = p.Spec.Standards.CI
	}
	if out.Standards.Security == "" {
		out.Standards.Security = p.Spec.Standards.Security
	}
	if out.Standards.Releases == "" {
		out.Standards.Releases = p.Spec.Standards.Releases
	}
	return out, nil
}

// Seed returns a copy of s whose standards are replaced wholesale by the
// named pack, with defaults for anything the pack leaves unset. Unlike
// Apply, levels already set on s are discarded.
func (r *Registry) Seed(s spec.Spec, name string) (spec.Spec, error) {
	cleared := s.Clone()
	cleared.Standards = spec.Standards{}
	out, err := r.Apply(cleared, name)
	if err != nil {
		return spec.Spec{}, err
	}
	return out.WithDefaults(), nil
}
