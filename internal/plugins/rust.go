package plugins

import (
	"github.com/repoforge/repoforge/internal/compliance"
	"github.com/repoforge/repoforge/internal/generator"
	"github.com/repoforge/repoforge/internal/spec"
)

type rustPlugin struct{}

func (rustPlugin) Name() string { return "rust" }

func (rustPlugin) Applicable(s spec.Spec) bool { return s.Language() == spec.LangRust }

func (rustPlugin) Generate(spec.Spec) []generator.File {
	return []generator.File{
		{Path: "rustfmt.toml", Content: "edition = \"2021\"\nmax_width = 100\n"},
		{Path: ".clippy.toml", Content: "msrv = \"1.70\"\n"},
		{Path: "Makefile", Content: ".PHONY: build test lint\n\nbuild:\n\tcargo build --release\n\ntest:\n\tcargo test\n\nlint:\n\tcargo clippy -- -D warnings\n"},
	}
}

func (rustPlugin) Rules() []compliance.Rule {
	return []compliance.Rule{
		{ID: "rust-cargo-toml", File: "Cargo.toml", Severity: compliance.SeverityError,
			Check: compliance.FileExists("Cargo.toml", "Cargo.toml is required for Rust projects")},
		{ID: "rust-fmt-config", File: "rustfmt.toml",
			Check: compliance.FileExists("rustfmt.toml", "rustfmt.toml keeps formatting consistent")},
	}
}
