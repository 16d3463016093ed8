// SPDX-License-Identifier: AGPL-3.0-or-later

package upgrade

import (
	"fmt"
	"strings"

	"github.com/repoforge/repoforge/internal/spec"
)

// Action is what a step does to its file.
type Action string

const (
	ActionCreate Action = "create"
	ActionModify Action = "modify"
	ActionDelete Action = "delete"
	ActionManual Action = "manual"
)

// Step is one file-level migration action.
type Step struct {
	Action     Action `json:"action"`
	File       string `json:"file"`
	Reason     string `json:"reason"`
	OldContent string `json:"oldContent,omitempty"`
	NewContent string `json:"newContent,omitempty"`
}

// Guide is the computed plan for moving between two versions.
type Guide struct {
	From           string `json:"from"`
	To             string `json:"to"`
	Steps          []Step `json:"steps"`
	BackupRequired bool   `json:"backupRequired"`
}

// Any matches every component value in a VersionRange.
const Any = -1

// VersionRange matches versions by major and an inclusive minor interval.
type VersionRange struct {
	Major    int
	MinMinor int
	MaxMinor int
}

func (r VersionRange) contains(major, minor int) bool {
	if r.Major != Any && r.Major != major {
		return false
	}
	if minor < r.MinMinor {
		return false
	}
	return r.MaxMinor == Any || minor <= r.MaxMinor
}

// Migration applies its steps when the current version falls in From and the
// target falls in To.
type Migration struct {
	Name  string
	From  VersionRange
	To    VersionRange
	Steps []Step
}

// Matches reports whether the migration covers the given transition.
func (m Migration) Matches(curMajor, curMinor, tgtMajor, tgtMinor int) bool {
	return m.From.contains(curMajor, curMinor) && m.To.contains(tgtMajor, tgtMinor)
}

// Migrations is the append-only list of known transitions, checked in order.
var Migrations = []Migration{
	{
		Name: "release-workflow",
		From: VersionRange{Major: 1, MinMinor: 0, MaxMinor: 0},
		To:   VersionRange{Major: 1, MinMinor: 1, MaxMinor: Any},
		Steps: []Step{{
			Action: ActionCreate,
			File:   ".github/workflows/release.yml",
			Reason: "New release workflow added in v1.1.0",
		}},
	},
	{
		Name: "spec-format-v2",
		From: VersionRange{Major: 1, MinMinor: 0, MaxMinor: Any},
		To:   VersionRange{Major: 2, MinMinor: 0, MaxMinor: Any},
		Steps: []Step{
			{
				Action: ActionModify,
				File:   spec.DefaultFileName,
				Reason: "Spec format updated from v1 to v2",
			},
			{
				Action: ActionModify,
				File:   ".github/workflows/ci.yml",
				Reason: "CI workflow improvements in v2.0.0",
			},
		},
	},
}

// Plan computes the upgrade guide from current to target using Migrations.
// Equal versions always yield an empty plan. Pairs that match no migration
// yield an empty step list.
func Plan(current, target string) (Guide, error) {
	return PlanWith(Migrations, current, target)
}

// PlanWith is Plan over an explicit migration list.
func PlanWith(migrations []Migration, current, target string) (Guide, error) {
	g := Guide{From: current, To: target, Steps: []Step{}}
	if current == target {
		return g, nil
	}

	curMajor, curMinor, err := majorMinor(current)
	if err != nil {
		return Guide{}, err
	}
	tgtMajor, tgtMinor, err := majorMinor(target)
	if err != nil {
		return Guide{}, err
	}

	g.BackupRequired = tgtMajor > curMajor
	for _, m := range migrations {
		if m.Matches(curMajor, curMinor, tgtMajor, tgtMinor) {
			g.Steps = append(g.Steps, m.Steps...)
		}
	}
	return g, nil
}

// MigrationScript returns placeholder content for every create and modify
// step, keyed by file. Real content comes from the artifact generators.
func MigrationScript(s spec.Spec, g Guide) map[string]string {
	out := make(map[string]string)
	for _, st := range g.Steps {
		if st.Action != ActionCreate && st.Action != ActionModify {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "# repoforge migration %s -> %s (%s)\n", g.From, g.To, st.Action)
		if s.Project != nil {
			fmt.Fprintf(&b, "# project: %s/%s\n", s.Project.Type, s.Project.Language)
		}
		fmt.Fprintf(&b, "# %s\n", st.Reason)
		out[st.File] = b.String()
	}
	return out
}
