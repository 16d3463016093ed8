// SPDX-License-Identifier: AGPL-3.0-or-later

// Package upgrade plans migrations between spec format versions and renders
// the file diffs a reviewer sees before applying them.
package upgrade

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrInvalidVersion is returned for strings that are not semantic versions.
var ErrInvalidVersion = errors.New("invalid version")

// VersionMetadata describes one released spec format version.
type VersionMetadata struct {
	Version         string   `json:"version"`
	Date            string   `json:"date"`
	BreakingChanges []string `json:"breakingChanges"`
	Features        []string `json:"features"`
	Deprecations    []string `json:"deprecations"`
}

var versionTable = map[string]VersionMetadata{
	"1.0.0": {
		Version:         "1.0.0",
		Date:            "2024-01-01",
		BreakingChanges: []string{},
		Features:        []string{"Initial release", "CI/Security workflows", "Spec system"},
		Deprecations:    []string{},
	},
	"1.1.0": {
		Version:         "1.1.0",
		Date:            "2024-02-01",
		BreakingChanges: []string{},
		Features:        []string{"Release workflow support", "Improved dependency scanning", "Added Go language support"},
		Deprecations:    []string{},
	},
	"2.0.0": {
		Version: "2.0.0",
		Date:    "2024-03-01",
		BreakingChanges: []string{
			"Spec format changed from 1.0 to 2.0",
			"CI level 'permissive' renamed to 'relaxed'",
		},
		Features:     []string{"Policy packs", "Team-level standards", "Drift auto-remediation"},
		Deprecations: []string{"Old spec format (1.0)"},
	},
}

// Metadata returns the table entry for version.
func Metadata(version string) (VersionMetadata, bool) {
	m, ok := versionTable[version]
	return m, ok
}

// Versions returns all known versions, oldest first.
func Versions() []string {
	out := make([]string, 0, len(versionTable))
	for v := range versionTable {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return compare(out[i], out[j]) < 0 })
	return out
}

// LatestVersion returns the greatest known version by numeric
// (major, minor, patch) order.
func LatestVersion() string {
	vs := Versions()
	return vs[len(vs)-1]
}

func canonical(v string) string {
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

func compare(a, b string) int {
	return semver.Compare(canonical(a), canonical(b))
}

// majorMinor parses the major and minor components of v.
func majorMinor(v string) (int, int, error) {
	c := canonical(v)
	if !semver.IsValid(c) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	parts := strings.SplitN(strings.TrimPrefix(semver.MajorMinor(c), "v"), ".", 2)
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	minor, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidVersion, v)
	}
	return major, minor, nil
}
