// SPDX-License-Identifier: AGPL-3.0-or-later

package spec

import (
	"errors"
	"fmt"

	"golang.org/x/mod/semver"
)

// Validate checks the schema invariants of a complete spec and returns every
// problem found, joined. A nil error means the spec is well formed.
func (s Spec) Validate() error {
	var errs []error

	if s.Version == "" {
		errs = append(errs, errors.New("missing version"))
	} else if !semver.IsValid("v" + s.Version) {
		errs = append(errs, fmt.Errorf("invalid version: %s", s.Version))
	}

	if s.Project == nil {
		errs = append(errs, errors.New("missing project"))
	} else {
		errs = append(errs, s.Project.validate()...)
	}

	if s.Standards == (Standards{}) {
		errs = append(errs, errors.New("missing standards"))
	}
	for _, f := range []struct {
		name  string
		level Level
	}{
		{"standards.ci", s.Standards.CI},
		{"standards.security", s.Standards.Security},
		{"standards.releases", s.Standards.Releases},
	} {
		if f.level != "" && !f.level.Valid() {
			errs = append(errs, fmt.Errorf("%s has invalid level: %s", f.name, f.level))
		}
	}

	return errors.Join(errs...)
}

func (p *Project) validate() []error {
	var errs []error
	check := func(field, value string, ok bool) {
		switch {
		case value == "":
			errs = append(errs, fmt.Errorf("project.%s is required", field))
		case !ok:
			errs = append(errs, fmt.Errorf("project.%s has invalid value: %s", field, value))
		}
	}
	check("type", string(p.Type), p.Type.Valid())
	check("language", string(p.Language), p.Language.Valid())
	check("runtime", string(p.Runtime), p.Runtime.Valid())
	check("deployment", string(p.Deployment), p.Deployment.Valid())
	if p.Risk != "" && !p.Risk.Valid() {
		errs = append(errs, fmt.Errorf("project.risk has invalid value: %s", p.Risk))
	}
	return errs
}
