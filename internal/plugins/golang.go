package plugins

import (
	"github.com/repoforge/repoforge/internal/compliance"
	"github.com/repoforge/repoforge/internal/generator"
	"github.com/repoforge/repoforge/internal/spec"
)

type goPlugin struct{}

func (goPlugin) Name() string { return "go" }

func (goPlugin) Applicable(s spec.Spec) bool { return s.Language() == spec.LangGo }

func (goPlugin) Generate(spec.Spec) []generator.File {
	return []generator.File{
		{Path: ".golangci.yml", Content: `version: "2"
linters:
  enable:
    - errcheck
    - govet
    - staticcheck
    - unused
    - misspell
formatters:
  enable:
    - gofumpt
`},
		{Path: "Makefile", Content: ".PHONY: build test lint\n\nbuild:\n\tgo build ./...\n\ntest:\n\tgo test ./...\n\nlint:\n\tgolangci-lint run\n"},
	}
}

func (goPlugin) Rules() []compliance.Rule {
	return []compliance.Rule{
		{ID: "go-module-defined", File: "go.mod", Severity: compliance.SeverityError,
			Check: compliance.FileExists("go.mod", "go.mod is required for Go projects")},
		{ID: "go-lint-config", File: ".golangci.yml",
			Check: compliance.FileExists(".golangci.yml", ".golangci.yml configures the linters CI runs")},
		{ID: "go-makefile", File: "Makefile",
			Check: compliance.FileExists("Makefile", "Makefile provides the standard build targets")},
	}
}
