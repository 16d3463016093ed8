// SPDX-License-Identifier: AGPL-3.0-or-later

package compliance

import (
	"bytes"
	"encoding/json"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repoforge/repoforge/internal/spec"
)

func specWithCI(level spec.Level) spec.Spec {
	return spec.Spec{
		Version:   "1.0.0",
		Project:   &spec.Project{Type: spec.TypeCLI, Language: spec.LangGo, Runtime: spec.RuntimeGo, Deployment: spec.DeployVM},
		Standards: spec.Standards{CI: level},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		spec      spec.Spec
		existing  FileSet
		wantValid bool
		want      []Violation
	}{
		{
			name:      "enforced with nothing present",
			spec:      specWithCI(spec.LevelEnforced),
			existing:  NewFileSet(),
			wantValid: false,
			want: []Violation{
				{File: ".github/workflows/ci.yml", Rule: RuleRequiredWorkflow, Severity: SeverityError, Message: "Required workflow file missing: .github/workflows/ci.yml"},
				{File: ".github/workflows/security.yml", Rule: RuleRequiredWorkflow, Severity: SeverityError, Message: "Required workflow file missing: .github/workflows/security.yml"},
			},
		},
		{
			name:      "strict warns on the same files",
			spec:      specWithCI(spec.LevelStrict),
			existing:  NewFileSet(".github/workflows/ci.yml"),
			wantValid: true,
			want: []Violation{
				{File: ".github/workflows/security.yml", Rule: RuleRequiredWorkflow, Severity: SeverityWarn, Message: "Required workflow file missing: .github/workflows/security.yml"},
			},
		},
		{
			name:      "permissive requires ci only",
			spec:      specWithCI(spec.LevelPermissive),
			existing:  NewFileSet(),
			wantValid: true,
			want: []Violation{
				{File: ".github/workflows/ci.yml", Rule: RuleRequiredWorkflow, Severity: SeverityWarn, Message: "Required workflow file missing: .github/workflows/ci.yml"},
			},
		},
		{
			name:      "all present",
			spec:      specWithCI(spec.LevelEnforced),
			existing:  NewFileSet(".github/workflows/ci.yml", ".github/workflows/security.yml"),
			wantValid: true,
			want:      []Violation{},
		},
		{
			name:      "missing project",
			spec:      spec.Spec{Standards: spec.Standards{CI: spec.LevelPermissive}},
			existing:  NewFileSet(".github/workflows/ci.yml"),
			wantValid: false,
			want: []Violation{
				{File: "repoforge.yaml", Rule: RuleProjectDefined, Severity: SeverityError, Message: "Project configuration is required"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Validate(tt.spec, tt.existing)
			assert.Equal(t, tt.wantValid, res.Valid)
			assert.Equal(t, tt.want, res.Violations)
		})
	}
}

func TestValidateUnsetLevelUsesDefault(t *testing.T) {
	res := Validate(specWithCI(""), NewFileSet())
	assert.True(t, res.Valid)
	assert.Len(t, res.Violations, 2)
}

func TestCheckDrift(t *testing.T) {
	s := specWithCI(spec.LevelStrict)
	baseline := map[string]string{"ci.yml": "A"}

	got := CheckDrift(s, baseline, map[string]string{"ci.yml": "B"})
	require.Len(t, got, 1)
	assert.Equal(t, RuleFileModified, got[0].Rule)
	assert.Equal(t, "File was modified from baseline: ci.yml", got[0].Message)

	got = CheckDrift(s, baseline, map[string]string{})
	require.Len(t, got, 1)
	assert.Equal(t, RuleFileDeleted, got[0].Rule)
	assert.Equal(t, SeverityWarn, got[0].Severity)

	assert.Empty(t, CheckDrift(s, baseline, map[string]string{"ci.yml": "A", "new.yml": "X"}))
}

func TestCheckDriftSeverityAndOrder(t *testing.T) {
	s := specWithCI(spec.LevelEnforced)
	baseline := map[string]string{"z.yml": "1", "a.yml": "1", "m.yml": "1"}
	current := map[string]string{"m.yml": "1 "}

	got := CheckDrift(s, baseline, current)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a.yml", "m.yml", "z.yml"}, []string{got[0].File, got[1].File, got[2].File})
	for _, v := range got {
		assert.Equal(t, SeverityError, v.Severity)
	}
	assert.Equal(t, RuleFileModified, got[1].Rule)
}

func TestEvaluateRules(t *testing.T) {
	fsys := fstest.MapFS{"go.mod": {Data: []byte("module x\n")}}
	rules := []Rule{
		{ID: "has-go-mod", File: "go.mod", Check: FileExists("go.mod", "go.mod is missing")},
		{ID: "has-makefile", File: "Makefile", Check: FileExists("Makefile", "Makefile is missing")},
		{ID: "hard", File: "LICENSE", Severity: SeverityError, Check: FileExists("LICENSE", "LICENSE is missing")},
	}

	res := EvaluateRules(rules, fsys)
	assert.False(t, res.Valid)
	assert.Equal(t, []Violation{
		{File: "Makefile", Rule: "has-makefile", Severity: SeverityWarn, Message: "Makefile is missing"},
		{File: "LICENSE", Rule: "hard", Severity: SeverityError, Message: "LICENSE is missing"},
	}, res.Violations)
}

func TestResultMerge(t *testing.T) {
	a := NewResult([]Violation{{Rule: "a", Severity: SeverityWarn}})
	b := NewResult([]Violation{{Rule: "b", Severity: SeverityError}})

	m := a.Merge(b)
	assert.False(t, m.Valid)
	assert.Equal(t, 1, m.Count(SeverityWarn))
	assert.Equal(t, 1, m.Count(SeverityError))
}

func TestWriteSARIF(t *testing.T) {
	res := Validate(specWithCI(spec.LevelEnforced), NewFileSet(".github/workflows/ci.yml"))

	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, res))

	var report sarifReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	assert.Equal(t, "2.1.0", report.Version)
	require.Len(t, report.Runs, 1)
	assert.Equal(t, "repoforge", report.Runs[0].Tool.Driver.Name)
	require.Len(t, report.Runs[0].Results, 1)
	r := report.Runs[0].Results[0]
	assert.Equal(t, RuleRequiredWorkflow, r.RuleID)
	assert.Equal(t, "error", r.Level)
	assert.Equal(t, ".github/workflows/security.yml", r.Locations[0].PhysicalLocation.ArtifactLocation.URI)
}

func TestWriteJSONAndText(t *testing.T) {
	res := Validate(specWithCI(spec.LevelStrict), NewFileSet())

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, res))
	var decoded Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, res, decoded)

	buf.Reset()
	require.NoError(t, WriteText(&buf, res))
	assert.Contains(t, buf.String(), "Required workflow file missing: .github/workflows/ci.yml")
	assert.Contains(t, buf.String(), "0 error(s), 2 warning(s)")

	buf.Reset()
	require.NoError(t, WriteText(&buf, NewResult(nil)))
	assert.Contains(t, buf.String(), "No violations found")
}

func TestApplyOverrides(t *testing.T) {
	res := NewResult([]Violation{
		{Rule: "go-makefile", Severity: SeverityWarn},
		{Rule: RuleRequiredWorkflow, Severity: SeverityError},
		{Rule: "go-lint-config", Severity: SeverityWarn},
	})

	got, err := ApplyOverrides(res, map[string]string{
		RuleRequiredWorkflow: "warn",
		"go-makefile":        "OFF",
		"go-lint-config":     "error",
	})
	require.NoError(t, err)
	assert.False(t, got.Valid)
	assert.Equal(t, []Violation{
		{Rule: RuleRequiredWorkflow, Severity: SeverityWarn},
		{Rule: "go-lint-config", Severity: SeverityError},
	}, got.Violations)

	_, err = ApplyOverrides(res, map[string]string{"go-makefile": "loud"})
	require.Error(t, err)

	same, err := ApplyOverrides(res, nil)
	require.NoError(t, err)
	assert.Equal(t, res, same)
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"text", "JSON", "sarif"} {
		_, err := ParseFormat(s)
		assert.NoError(t, err, s)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}
