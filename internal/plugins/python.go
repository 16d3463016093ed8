package plugins

import (
	"fmt"
	"strings"

	"github.com/repoforge/repoforge/internal/compliance"
	"github.com/repoforge/repoforge/internal/generator"
	"github.com/repoforge/repoforge/internal/spec"
)

type pythonPlugin struct{}

func (pythonPlugin) Name() string { return "python" }

func (pythonPlugin) Applicable(s spec.Spec) bool { return s.Language() == spec.LangPython }

func (pythonPlugin) Generate(s spec.Spec) []generator.File {
	version := "3.11"
	if s.Project != nil {
		if v, ok := strings.CutPrefix(string(s.Project.Runtime), "python"); ok && len(v) >= 2 {
			version = v[:1] + "." + v[1:]
		}
	}
	pyproject := fmt.Sprintf(`[project]
name = "app"
version = "0.1.0"
requires-python = ">=%s"

[tool.pylint.format]
max-line-length = 100

[tool.pytest.ini_options]
testpaths = ["tests"]
`, version)

	return []generator.File{
		{Path: "pyproject.toml", Content: pyproject},
		{Path: ".python-version", Content: version + "\n"},
		{Path: "requirements.txt", Content: "pytest\npylint\n"},
	}
}

func (pythonPlugin) Rules() []compliance.Rule {
	return []compliance.Rule{
		{
			ID:    "python-pyproject-toml",
			File:  "pyproject.toml",
			Check: compliance.FileExists("pyproject.toml", "pyproject.toml is required for Python projects"),
		},
		{
			ID:    "python-version-file",
			File:  ".python-version",
			Check: compliance.FileExists(".python-version", ".python-version pins the interpreter for local development"),
		},
	}
}
