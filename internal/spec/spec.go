// SPDX-License-Identifier: AGPL-3.0-or-later

// Package spec defines the repoforge.yaml governance document: the project
// facts a repository declares and the standards levels it is held to.
package spec

// DefaultFileName is the conventional name of the persisted spec.
const DefaultFileName = "repoforge.yaml"

// DefaultVersion is the spec format version assigned when none is given.
const DefaultVersion = "1.0.0"

// ProjectType classifies what a repository ships.
type ProjectType string

const (
	TypeBackendAPI ProjectType = "backend-api"
	TypeFrontend   ProjectType = "frontend"
	TypeCLI        ProjectType = "cli"
	TypeLibrary    ProjectType = "library"
	TypeMonorepo   ProjectType = "monorepo"
	TypeStaticSite ProjectType = "static-site"
)

// Language is the primary implementation language.
type Language string

const (
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangGo         Language = "go"
	LangRust       Language = "rust"
)

// Runtime is the execution runtime the CI pipeline targets.
type Runtime string

const (
	RuntimeNode16    Runtime = "node16"
	RuntimeNode18    Runtime = "node18"
	RuntimeNode20    Runtime = "node20"
	RuntimePython39  Runtime = "python39"
	RuntimePython310 Runtime = "python310"
	RuntimePython311 Runtime = "python311"
	RuntimeGo        Runtime = "go"
	RuntimeRust      Runtime = "rust"
)

// Deployment is how the project is shipped.
type Deployment string

const (
	DeployContainer  Deployment = "container"
	DeployServerless Deployment = "serverless"
	DeployStatic     Deployment = "static"
	DeployVM         Deployment = "vm"
)

// Risk is the exposure class of the repository.
type Risk string

const (
	RiskPublic    Risk = "public"
	RiskInternal  Risk = "internal"
	RiskRegulated Risk = "regulated"
	RiskOSS       Risk = "oss"
)

// Level is a standards level. The empty Level means "not set".
type Level string

const (
	LevelPermissive Level = "permissive"
	LevelStrict     Level = "strict"
	LevelEnforced   Level = "enforced"
)

// Default standards applied to unset fields.
const (
	DefaultCI       = LevelStrict
	DefaultSecurity = LevelEnforced
	DefaultReleases = LevelStrict
)

// Project holds the facts that drive artifact generation.
type Project struct {
	Type       ProjectType `yaml:"type,omitempty" json:"type,omitempty"`
	Language   Language    `yaml:"language,omitempty" json:"language,omitempty"`
	Runtime    Runtime     `yaml:"runtime,omitempty" json:"runtime,omitempty"`
	Deployment Deployment  `yaml:"deployment,omitempty" json:"deployment,omitempty"`
	Risk       Risk        `yaml:"risk,omitempty" json:"risk,omitempty"`
}

// Standards holds the three independently selectable levels.
type Standards struct {
	CI       Level `yaml:"ci,omitempty" json:"ci,omitempty"`
	Security Level `yaml:"security,omitempty" json:"security,omitempty"`
	Releases Level `yaml:"releases,omitempty" json:"releases,omitempty"`
}

// WithDefaults returns a copy with every unset level replaced by its default.
func (s Standards) WithDefaults() Standards {
	if s.CI == "" {
		s.CI = DefaultCI
	}
	if s.Security == "" {
		s.Security = DefaultSecurity
	}
	if s.Releases == "" {
		s.Releases = DefaultReleases
	}
	return s
}

// Metadata records provenance of a generated spec.
type Metadata struct {
	Generated   string `yaml:"generated,omitempty" json:"generated,omitempty"`
	GeneratedBy string `yaml:"generatedBy,omitempty" json:"generatedBy,omitempty"`
}

// Spec is the governance document. A Spec is treated as a value: helpers
// in this module return modified copies and never mutate their argument.
// The same type doubles as a partial spec (a policy) where zero fields
// mean "not specified".
type Spec struct {
	Version   string    `yaml:"version,omitempty" json:"version,omitempty"`
	Project   *Project  `yaml:"project,omitempty" json:"project,omitempty"`
	Standards Standards `yaml:"standards,omitempty" json:"standards,omitempty"`
	Metadata  *Metadata `yaml:"metadata,omitempty" json:"metadata,omitempty"`
}

// Clone returns a deep copy of s.
func (s Spec) Clone() Spec {
	out := s
	if s.Project != nil {
		p := *s.Project
		out.Project = &p
	}
	if s.Metadata != nil {
		m := *s.Metadata
		out.Metadata = &m
	}
	return out
}

// WithDefaults returns a copy with the default version and standards filled in.
func (s Spec) WithDefaults() Spec {
	out := s.Clone()
	if out.Version == "" {
		out.Version = DefaultVersion
	}
	out.Standards = out.Standards.WithDefaults()
	return out
}

// Language returns the project language, or "" when no project is declared.
func (s Spec) Language() Language {
	if s.Project == nil {
		return ""
	}
	return s.Project.Language
}

// CILevel returns the effective CI level, applying the default when unset.
func (s Spec) CILevel() Level {
	return s.Standards.WithDefaults().CI
}
