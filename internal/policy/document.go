// SPDX-License-Identifier: AGPL-3.0-or-later

// Package policy resolves layered governance policies and the built-in
// policy packs that seed a spec's standards.
package policy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/repoforge/repoforge/internal/spec"
)

// Document is a partial spec in its generic mapping form. Merging happens
// on documents so that keys outside the typed schema survive resolution.
type Document map[string]any

// LoadDocument reads a YAML policy file. An empty file yields an empty document.
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file: %w", err)
	}
	return ParseDocument(data)
}

// ParseDocument decodes YAML into a Document.
func ParseDocument(data []byte) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse policy YAML: %w", err)
	}
	if doc == nil {
		doc = Document{}
	}
	return doc, nil
}

// FromSpec converts a (partial) spec into a document. Unset fields are omitted.
func FromSpec(s spec.Spec) (Document, error) {
	data, err := spec.Marshal(s)
	if err != nil {
		return nil, err
	}
	return ParseDocument(data)
}

// Spec decodes the typed view of a document. Unknown keys are ignored.
func (d Document) Spec() (spec.Spec, error) {
	data, err := yaml.Marshal(map[string]any(d))
	if err != nil {
		return spec.Spec{}, fmt.Errorf("failed to encode policy: %w", err)
	}
	return spec.Parse(data)
}
