// SPDX-License-Identifier: AGPL-3.0-or-later

package policy

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repoforge/repoforge/internal/spec"
)

func ciDoc(level string) Document {
	return Document{"standards": map[string]any{"ci": level}}
}

func TestDeepMerge(t *testing.T) {
	tests := []struct {
		name        string
		left, right Document
		want        Document
	}{
		{
			name:  "right scalar wins",
			left:  Document{"version": "1.0.0"},
			right: Document{"version": "2.0.0"},
			want:  Document{"version": "2.0.0"},
		},
		{
			name:  "nested mappings merge per key",
			left:  Document{"standards": map[string]any{"ci": "strict", "security": "enforced"}},
			right: Document{"standards": map[string]any{"ci": "enforced"}},
			want:  Document{"standards": map[string]any{"ci": "enforced", "security": "enforced"}},
		},
		{
			name:  "lists are replaced",
			left:  Document{"rules": []any{"a", "b"}},
			right: Document{"rules": []any{"c"}},
			want:  Document{"rules": []any{"c"}},
		},
		{
			name:  "absent and nil keys keep left",
			left:  Document{"version": "1.0.0", "project": map[string]any{"language": "go"}},
			right: Document{"project": nil},
			want:  Document{"version": "1.0.0", "project": map[string]any{"language": "go"}},
		},
		{
			name:  "scalar replaced by mapping",
			left:  Document{"standards": "strict"},
			right: Document{"standards": map[string]any{"ci": "strict"}},
			want:  Document{"standards": map[string]any{"ci": "strict"}},
		},
		{
			name:  "nil left",
			right: ciDoc("strict"),
			want:  ciDoc("strict"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DeepMerge(tt.left, tt.right)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DeepMerge mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDeepMergeDoesNotMutate(t *testing.T) {
	left := Document{"standards": map[string]any{"ci": "strict"}}
	right := Document{"standards": map[string]any{"ci": "enforced"}}

	merged := DeepMerge(left, right)
	merged["standards"].(map[string]any)["security"] = "permissive"

	assert.Equal(t, Document{"standards": map[string]any{"ci": "strict"}}, left)
	assert.Equal(t, Document{"standards": map[string]any{"ci": "enforced"}}, right)
}

func TestEffectivePolicyPrecedence(t *testing.T) {
	org, team, repo := ciDoc("permissive"), ciDoc("strict"), ciDoc("enforced")

	ci := func(d Document) any { return d["standards"].(map[string]any)["ci"] }

	assert.Equal(t, "enforced", ci(EffectivePolicy(".", org, team, repo)))
	assert.Equal(t, "strict", ci(EffectivePolicy(".", org, team, nil)))
	assert.Equal(t, "permissive", ci(EffectivePolicy(".", org, nil, nil)))
	assert.Equal(t, Document{}, EffectivePolicy(".", nil, nil, nil))
}

func TestChainSameLevelLaterWins(t *testing.T) {
	c := NewChain(
		Layer{Level: LevelTeam, Source: "a", Policy: Document{"standards": map[string]any{"ci": "strict", "security": "strict"}}},
		Layer{Level: LevelOrganization, Source: "org", Policy: Document{"standards": map[string]any{"releases": "enforced"}}},
		Layer{Level: LevelTeam, Source: "b", Policy: Document{"standards": map[string]any{"ci": "enforced"}}},
	)

	got := c.Resolve(nil)
	want := Document{"standards": map[string]any{"ci": "enforced", "security": "strict", "releases": "enforced"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Resolve mismatch (-want +got):\n%s", diff)
	}
}

func TestChainWithIsImmutable(t *testing.T) {
	base := NewChain(Layer{Level: LevelOrganization, Policy: ciDoc("strict")})
	a := base.With(Layer{Level: LevelRepository, Policy: ciDoc("enforced")})
	b := base.With(Layer{Level: LevelRepository, Policy: ciDoc("permissive")})

	assert.Len(t, base.Layers(), 1)
	assert.Equal(t, ciDoc("enforced"), a.Resolve(nil))
	assert.Equal(t, ciDoc("permissive"), b.Resolve(nil))
	assert.Equal(t, ciDoc("permissive"), a.Resolve(ciDoc("permissive")))
}

func TestDocumentSpecRoundTrip(t *testing.T) {
	doc := Document{
		"project":   map[string]any{"language": "python"},
		"standards": map[string]any{"ci": "enforced"},
		"extra":     []any{1, 2},
	}
	s, err := doc.Spec()
	require.NoError(t, err)
	assert.Equal(t, spec.LangPython, s.Language())
	assert.Equal(t, spec.LevelEnforced, s.Standards.CI)

	back, err := FromSpec(s)
	require.NoError(t, err)
	assert.Equal(t, Document{
		"project":   map[string]any{"language": "python"},
		"standards": map[string]any{"ci": "enforced"},
	}, back)
}

func TestLoadDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "org.yaml")
	require.NoError(t, os.WriteFile(path, []byte("standards:\n  security: enforced\n"), 0o644))

	doc, err := LoadDocument(path)
	require.NoError(t, err)
	assert.Equal(t, Document{"standards": map[string]any{"security": "enforced"}}, doc)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	doc, err = LoadDocument(empty)
	require.NoError(t, err)
	assert.Equal(t, Document{}, doc)
}

func TestCheckCompliance(t *testing.T) {
	s := spec.Spec{
		Project:   &spec.Project{Language: spec.LangGo},
		Standards: spec.Standards{CI: spec.LevelStrict, Security: spec.LevelEnforced, Releases: spec.LevelStrict},
	}

	t.Run("empty policy is compliant", func(t *testing.T) {
		res := CheckCompliance(s, spec.Spec{})
		assert.True(t, res.Compliant)
		assert.Empty(t, res.Violations)
	})

	t.Run("matching fields are compliant", func(t *testing.T) {
		pol := spec.Spec{Project: &spec.Project{Language: spec.LangGo}, Standards: spec.Standards{CI: spec.LevelStrict}}
		assert.True(t, CheckCompliance(s, pol).Compliant)
	})

	t.Run("mismatches are reported in field order", func(t *testing.T) {
		pol := spec.Spec{
			Project:   &spec.Project{Language: spec.LangRust, Runtime: spec.RuntimeRust},
			Standards: spec.Standards{CI: spec.LevelEnforced, Releases: spec.LevelEnforced},
		}
		res := CheckCompliance(s, pol)
		assert.False(t, res.Compliant)
		assert.Equal(t, []string{
			"CI standard mismatch: expected enforced, got strict",
			"Release standard mismatch: expected enforced, got strict",
			"Language mismatch: expected rust, got go",
		}, res.Violations)
	})

	t.Run("absent spec value is a mismatch", func(t *testing.T) {
		pol := spec.Spec{Project: &spec.Project{Language: spec.LangGo}}
		res := CheckCompliance(spec.Spec{}, pol)
		assert.Equal(t, []string{"Language mismatch: expected go, got unset"}, res.Violations)
	})
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()

	names := func() []string {
		var out []string
		for _, p := range r.List() {
			out = append(out, p.Name)
		}
		return out
	}
	assert.Equal(t, []string{"startup", "saas", "enterprise", "oss"}, names())

	saas, ok := r.Get("saas")
	require.True(t, ok)
	assert.Equal(t, spec.Standards{CI: spec.LevelEnforced, Security: spec.LevelEnforced, Releases: spec.LevelStrict}, saas.Spec.Standards)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	r.Register(Pack{Name: "saas", Description: "custom", Spec: spec.Spec{Standards: spec.Standards{CI: spec.LevelPermissive}}})
	r.Register(Pack{Name: "fintech"})
	assert.Equal(t, []string{"startup", "saas", "enterprise", "oss", "fintech"}, names())
	saas, _ = r.Get("saas")
	assert.Equal(t, "custom", saas.Description)
}

func TestRegistryApply(t *testing.T) {
	r := NewRegistry()

	t.Run("pack fills unset levels only", func(t *testing.T) {
		s := spec.Spec{Standards: spec.Standards{CI: spec.LevelPermissive}}
		got, err := r.Apply(s, "enterprise")
		require.NoError(t, err)
		assert.Equal(t, spec.Standards{CI: spec.LevelPermissive, Security: spec.LevelEnforced, Releases: spec.LevelEnforced}, got.Standards)
		assert.Equal(t, spec.Standards{CI: spec.LevelPermissive}, s.Standards)
	})

	t.Run("explicit ci is never overridden", func(t *testing.T) {
		for _, p := range r.List() {
			for _, lvl := range spec.Levels {
				got, err := r.Apply(spec.Spec{Standards: spec.Standards{CI: lvl}}, p.Name)
				require.NoError(t, err)
				assert.Equal(t, lvl, got.Standards.CI, "pack %s", p.Name)
			}
		}
	})

	t.Run("unknown pack", func(t *testing.T) {
		_, err := r.Apply(spec.Spec{}, "nope")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrPackNotFound))
		assert.EqualError(t, err, "policy pack not found: nope")
	})
}

func TestRegistrySeed(t *testing.T) {
	r := NewRegistry()
	s := spec.Spec{Version: "1.0.0", Standards: spec.Standards{CI: spec.LevelPermissive}}

	got, err := r.Seed(s, "startup")
	require.NoError(t, err)
	assert.Equal(t, spec.Standards{CI: spec.LevelStrict, Security: spec.LevelStrict, Releases: spec.LevelPermissive}, got.Standards)
	assert.Equal(t, spec.LevelPermissive, s.Standards.CI)

	r.Register(Pack{Name: "ci-only", Spec: spec.Spec{Standards: spec.Standards{CI: spec.LevelEnforced}}})
	got, err = r.Seed(s, "ci-only")
	require.NoError(t, err)
	assert.Equal(t, spec.Standards{CI: spec.LevelEnforced, Security: spec.DefaultSecurity, Releases: spec.DefaultReleases}, got.Standards)

	_, err = r.Seed(s, "nope")
	assert.ErrorIs(t, err, ErrPackNotFound)
}
