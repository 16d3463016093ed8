// SPDX-License-Identifier: AGPL-3.0-or-later

// Package generator turns a spec into a complete spec document and the
// repository artifacts it requires: workflows, config files and docs.
package generator

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/repoforge/repoforge/internal/compliance"
	"github.com/repoforge/repoforge/internal/spec"
)

// Identity is recorded as metadata.generatedBy.
var Identity = "repoctl@0.1.0"

// ErrIncompleteProject is returned when a project lacks a required fact.
var ErrIncompleteProject = errors.New("incomplete project definition")

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"nodeVersion":    func(r string) string { return nodeVersion(spec.Runtime(r)) },
	"pythonVersion":  func(r string) string { return pythonVersion(spec.Runtime(r)) },
	"codeqlLanguage": func(l string) string { return ToolchainFor(spec.Language(l), "").CodeQL },
	"title":          title,
	"describe":       describe,
	"deploymentNote": deploymentNote,
}).ParseFS(templateFS, "templates/*.tmpl"))

// File is a generated artifact.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// GenerateSpec builds a complete spec from project facts. Type, language,
// runtime and deployment are required; risk defaults to internal.
func GenerateSpec(p spec.Project, now time.Time) (spec.Spec, error) {
	if p.Type == "" || p.Language == "" || p.Runtime == "" || p.Deployment == "" {
		return spec.Spec{}, ErrIncompleteProject
	}
	if p.Risk == "" {
		p.Risk = spec.RiskInternal
	}
	s := spec.Spec{
		Version: spec.DefaultVersion,
		Project: &p,
		Metadata: &spec.Metadata{
			Generated:   now.UTC().Format(time.RFC3339),
			GeneratedBy: Identity,
		},
	}
	return s.WithDefaults(), nil
}

// view is the data every template renders against.
type view struct {
	Lang       string
	Type       string
	Runtime    string
	Deployment string
	Releases   string
	Standards  spec.Standards
	Toolchain  Toolchain
	Required   []string
}

func newView(s spec.Spec) view {
	p := spec.Project{}
	if s.Project != nil {
		p = *s.Project
	}
	std := s.Standards.WithDefaults()
	return view{
		Lang:       string(p.Language),
		Type:       string(p.Type),
		Runtime:    string(p.Runtime),
		Deployment: string(p.Deployment),
		Releases:   string(std.Releases),
		Standards:  std,
		Toolchain:  ToolchainFor(p.Language, p.Runtime),
		Required:   compliance.RequiredWorkflows(std.CI),
	}
}

func render(name string, v view) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, v); err != nil {
		return "", fmt.Errorf("rendering %s: %w", name, err)
	}
	return buf.String(), nil
}

// Workflow paths.
var (
	CIWorkflow       = path.Join(compliance.WorkflowDir, "ci.yml")
	SecurityWorkflow = path.Join(compliance.WorkflowDir, "security.yml")
	ReleaseWorkflow  = path.Join(compliance.WorkflowDir, "release.yml")
	EnforceWorkflow  = path.Join(compliance.WorkflowDir, "repoforge.yml")
)

// Workflows renders the CI, security and release workflows, plus the
// enforcement workflow when standards.ci is enforced.
func Workflows(s spec.Spec) ([]File, error) {
	v := newView(s)
	specs := []struct{ path, tmpl string }{
		{CIWorkflow, "ci.yml.tmpl"},
		{SecurityWorkflow, "security.yml.tmpl"},
		{ReleaseWorkflow, "release.yml.tmpl"},
	}
	if v.Standards.CI == spec.LevelEnforced {
		specs = append(specs, struct{ path, tmpl string }{EnforceWorkflow, "enforce.yml.tmpl"})
	}
	return renderAll(v, specs)
}

// Workflow renders the single workflow at p.
func Workflow(s spec.Spec, p string) (File, error) {
	files, err := Workflows(s)
	if err != nil {
		return File{}, err
	}
	for _, f := range files {
		if f.Path == p {
			return f, nil
		}
	}
	return File{}, fmt.Errorf("no workflow generated for %s", p)
}

// Files renders the repository config and documentation files.
func Files(s spec.Spec) ([]File, error) {
	v := newView(s)
	out, err := renderAll(v, []struct{ path, tmpl string }{
		{".github/dependabot.yml", "dependabot.yml.tmpl"},
		{"README.md", "README.md.tmpl"},
		{"CONTRIBUTING.md", "CONTRIBUTING.md.tmpl"},
		{"SECURITY.md", "SECURITY.md.tmpl"},
	})
	if err != nil {
		return nil, err
	}
	return append(out,
		File{Path: ".github/CODEOWNERS", Content: codeowners},
		File{Path: ".editorconfig", Content: editorconfig},
		File{Path: ".gitattributes", Content: gitattributes},
		File{Path: "CHANGELOG.md", Content: changelog},
	), nil
}

// Artifacts returns workflows followed by files, sorted by path.
func Artifacts(s spec.Spec) ([]File, error) {
	wf, err := Workflows(s)
	if err != nil {
		return nil, err
	}
	files, err := Files(s)
	if err != nil {
		return nil, err
	}
	all := append(wf, files...)
	sort.Slice(all, func(i, j int) bool { return all[i].Path < all[j].Path })
	return all, nil
}

func renderAll(v view, specs []struct{ path, tmpl string }) ([]File, error) {
	out := make([]File, 0, len(specs))
	for _, s := range specs {
		content, err := render(s.tmpl, v)
		if err != nil {
			return nil, err
		}
		out = append(out, File{Path: s.path, Content: content})
	}
	return out, nil
}

func title(t string) string {
	if t == "" {
		return "Project"
	}
	words := strings.Split(t, "-")
	words[0] = strings.ToUpper(words[0][:1]) + words[0][1:]
	return strings.Join(words, " ")
}

func describe(t string) string {
	switch spec.ProjectType(t) {
	case spec.TypeBackendAPI:
		return "production-grade backend API service"
	case spec.TypeFrontend:
		return "modern frontend application"
	case spec.TypeCLI:
		return "command-line interface application"
	case spec.TypeLibrary:
		return "reusable software library"
	case spec.TypeMonorepo:
		return "monorepo managing multiple packages"
	case spec.TypeStaticSite:
		return "static website"
	default:
		return "project"
	}
}

func deploymentNote(d string) string {
	switch spec.Deployment(d) {
	case spec.DeployContainer:
		return "This project is containerized. Build and run it with:\n\n```bash\ndocker build -t app .\ndocker run -p 8080:8080 app\n```"
	case spec.DeployServerless:
		return "This project is designed for serverless deployment. Deploy it with your cloud provider's CLI."
	case spec.DeployStatic:
		return "This is a static site. Deploy the built files to any static hosting service."
	default:
		return ""
	}
}

const codeowners = `# CODEOWNERS
# See: https://docs.github.com/en/repositories/managing-your-repositorys-settings-and-features/customizing-your-repository/about-code-owners

# Default owners for everything in the repo
# * @org/maintainers

# Governance files
# repoforge.yaml @org/platform
# .github/workflows/ @org/platform
`

const editorconfig = `root = true

[*]
charset = utf-8
end_of_line = lf
insert_final_newline = true
trim_trailing_whitespace = true

[*.{json,yaml,yml}]
indent_style = space
indent_size = 2

[*.py]
indent_style = space
indent_size = 4

[{*.go,Makefile}]
indent_style = tab
`

const gitattributes = `* text=auto
*.js text eol=lf
*.ts text eol=lf
*.go text eol=lf
*.json text eol=lf
*.md text eol=lf
`

const changelog = "# Changelog\n\nAll notable changes to this project will be documented in this file.\n"
