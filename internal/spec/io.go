// SPDX-License-Identifier: AGPL-3.0-or-later

package spec

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/repoforge/repoforge/internal/projection"
)

// Parse decodes a spec document. Defaults are not applied.
func Parse(data []byte) (Spec, error) {
	var s Spec
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Spec{}, fmt.Errorf("failed to parse spec YAML: %w", err)
	}
	return s, nil
}

// Load reads the spec at path and applies defaults.
func Load(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("failed to read spec file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return Spec{}, fmt.Errorf("%s: %w", path, err)
	}
	return s.WithDefaults(), nil
}

// Marshal renders s as the persisted YAML document.
func Marshal(s Spec) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode spec: %w", err)
	}
	return data, nil
}

// Save writes s to path atomically.
func Save(path string, s Spec) error {
	data, err := Marshal(s)
	if err != nil {
		return err
	}
	return projection.AtomicWrite(path, data)
}
