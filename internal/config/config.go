// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config loads .repoforgerc defaults and environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/repoforge/repoforge/internal/projection"
	"github.com/repoforge/repoforge/internal/spec"
)

// FileNames are searched in order in each candidate directory.
var FileNames = []string{".repoforgerc.yaml", ".repoforgerc.yml", ".repoforgerc.json"}

// searchDepth is how many parent directories are searched above the start.
const searchDepth = 2

// GitHub holds remote defaults.
type GitHub struct {
	Owner        string `yaml:"owner,omitempty" json:"owner,omitempty"`
	DefaultToken string `yaml:"defaultToken,omitempty" json:"defaultToken,omitempty"`
}

// Config holds CLI defaults.
type Config struct {
	SpecPath      string            `yaml:"specPath,omitempty" json:"specPath,omitempty"`
	DefaultPolicy string            `yaml:"defaultPolicy,omitempty" json:"defaultPolicy,omitempty"`
	GitHub        GitHub            `yaml:"github,omitempty" json:"github,omitempty"`
	AutoFix       bool              `yaml:"autoFix,omitempty" json:"autoFix,omitempty"`
	DryRun        bool              `yaml:"dryRun,omitempty" json:"dryRun,omitempty"`
	Verbose       bool              `yaml:"verbose,omitempty" json:"verbose,omitempty"`
	Quiet         bool              `yaml:"quiet,omitempty" json:"quiet,omitempty"`
	Rules         map[string]string `yaml:"rules,omitempty" json:"rules,omitempty"`

	// Path is the file the config was loaded from, empty when none was found.
	Path string `yaml:"-" json:"-"`
}

// Default returns the config written by `repoctl config init`.
func Default() Config {
	return Config{SpecPath: spec.DefaultFileName, DefaultPolicy: "saas"}
}

// SpecFile returns the spec path, defaulting to repoforge.yaml.
func (c Config) SpecFile() string {
	if c.SpecPath == "" {
		return spec.DefaultFileName
	}
	return c.SpecPath
}

// Find returns the first config file found in dir or its parents, or ""
// when there is none.
func Find(dir string) string {
	for i := 0; i <= searchDepth; i++ {
		for _, name := range FileNames {
			p := filepath.Join(dir, name)
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// LoadFile reads a config file. JSON files parse as YAML.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.Path = path
	return c, nil
}

// Load finds and reads the config starting at dir, or reads explicit when
// it is non-empty, then applies environment overrides. When no file is
// found the result is a zero config and no error. On a read or parse error
// the env-only config is returned alongside the error.
func Load(dir, explicit string, getenv func(string) string) (Config, error) {
	path := explicit
	if path == "" {
		path = Find(dir)
	}

	var c Config
	if path != "" {
		var err error
		c, err = LoadFile(path)
		if err != nil {
			return ApplyEnv(Config{}, getenv), err
		}
	}
	return ApplyEnv(c, getenv), nil
}

// ApplyEnv overlays REPOFORGE_* environment variables onto c.
func ApplyEnv(c Config, getenv func(string) string) Config {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv("REPOFORGE_SPEC_PATH"); v != "" {
		c.SpecPath = v
	}
	if v := getenv("REPOFORGE_POLICY"); v != "" {
		c.DefaultPolicy = v
	}
	if isTrue(getenv("REPOFORGE_AUTO_FIX")) {
		c.AutoFix = true
	}
	if isTrue(getenv("REPOFORGE_DRY_RUN")) {
		c.DryRun = true
	}
	if isTrue(getenv("REPOFORGE_VERBOSE")) {
		c.Verbose = true
	}
	if isTrue(getenv("REPOFORGE_QUIET")) {
		c.Quiet = true
	}
	return c
}

func isTrue(v string) bool {
	return strings.EqualFold(v, "true") || v == "1"
}

// Write saves c as YAML at path, moving an existing file to path+".bak".
func Write(path string, c Config) error {
	if _, err := os.Stat(path); err == nil {
		if err := os.Rename(path, path+".bak"); err != nil {
			return fmt.Errorf("backup config: %w", err)
		}
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return projection.AtomicWrite(path, data)
}
