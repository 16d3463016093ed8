// SPDX-License-Identifier: AGPL-3.0-or-later

// Package fingerprint guesses a project's facts from its top-level files.
package fingerprint

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/repoforge/repoforge/internal/spec"
)

// maxEntries caps how many top-level entries are inspected.
const maxEntries = 50

// Confidence levels reported with a fingerprint.
const (
	ConfidenceManifest = 0.8
	ConfidenceFallback = 0.5
)

// Result is what the fingerprinter concluded.
type Result struct {
	Project    spec.Project `json:"project"`
	Patterns   []string     `json:"patterns"`
	Files      []string     `json:"files"`
	Confidence float64      `json:"confidence"`
}

// markers maps a top-level entry to the pattern its presence signals.
var markers = []struct {
	entry   string
	pattern string
}{
	{"package.json", "nodejs"},
	{"requirements.txt", "python"},
	{"pyproject.toml", "python"},
	{"go.mod", "golang"},
	{"Cargo.toml", "rust"},
	{"Dockerfile", "containerized"},
	{"docker-compose.yml", "containerized"},
	{".github", "github-actions"},
	{"serverless.yml", "serverless"},
	{"terraform", "iac-terraform"},
}

// AnalyzeDir fingerprints the directory at dir.
func AnalyzeDir(dir string) (Result, error) {
	return Analyze(os.DirFS(dir))
}

// Analyze fingerprints the root of fsys.
func Analyze(fsys fs.FS) (Result, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return Result{}, fmt.Errorf("reading project directory: %w", err)
	}

	present := make(map[string]bool, len(entries))
	var files []string
	for _, e := range entries {
		present[e.Name()] = true
		if strings.HasPrefix(e.Name(), ".") || e.Name() == "node_modules" {
			continue
		}
		if len(files) < maxEntries {
			files = append(files, e.Name())
		}
	}
	if _, err := fs.Stat(fsys, ".github/workflows"); err != nil {
		present[".github"] = false
	}

	res := Result{Files: files, Patterns: detectPatterns(present)}

	var pkg *packageJSON
	if present["package.json"] {
		pkg, err = readPackageJSON(fsys)
		if err != nil {
			return Result{}, err
		}
	}

	lang, fromManifest := detectLanguage(present, pkg)
	res.Project = spec.Project{
		Type:       detectType(pkg),
		Language:   lang,
		Runtime:    detectRuntime(fsys, lang, pkg),
		Deployment: detectDeployment(present),
		Risk:       spec.RiskInternal,
	}
	res.Confidence = ConfidenceFallback
	if fromManifest {
		res.Confidence = ConfidenceManifest
	}
	return res, nil
}

func detectPatterns(present map[string]bool) []string {
	seen := map[string]bool{}
	patterns := []string{}
	for _, m := range markers {
		if present[m.entry] && !seen[m.pattern] {
			seen[m.pattern] = true
			patterns = append(patterns, m.pattern)
		}
	}
	sort.Strings(patterns)
	return patterns
}

type packageJSON struct {
	Name            string            `json:"name"`
	Type            string            `json:"type"`
	Engines         map[string]string `json:"engines"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func (p *packageJSON) depends(name string) bool {
	_, a := p.Dependencies[name]
	_, b := p.DevDependencies[name]
	return a || b
}

func readPackageJSON(fsys fs.FS) (*packageJSON, error) {
	data, err := fs.ReadFile(fsys, "package.json")
	if err != nil {
		return nil, fmt.Errorf("reading package.json: %w", err)
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("parsing package.json: %w", err)
	}
	return &pkg, nil
}

func detectLanguage(present map[string]bool, pkg *packageJSON) (spec.Language, bool) {
	switch {
	case pkg != nil:
		if present["tsconfig.json"] || pkg.depends("typescript") {
			return spec.LangTypeScript, true
		}
		return spec.LangJavaScript, true
	case present["requirements.txt"] || present["pyproject.toml"]:
		return spec.LangPython, true
	case present["go.mod"]:
		return spec.LangGo, true
	case present["Cargo.toml"]:
		return spec.LangRust, true
	default:
		return spec.LangJavaScript, false
	}
}

func detectType(pkg *packageJSON) spec.ProjectType {
	if pkg == nil {
		return spec.TypeBackendAPI
	}
	switch {
	case strings.Contains(pkg.Name, "cli"):
		return spec.TypeCLI
	case pkg.depends("react"):
		return spec.TypeFrontend
	case pkg.Type == "module":
		return spec.TypeBackendAPI
	default:
		return spec.TypeLibrary
	}
}

func detectRuntime(fsys fs.FS, lang spec.Language, pkg *packageJSON) spec.Runtime {
	switch lang {
	case spec.LangGo:
		return spec.RuntimeGo
	case spec.LangRust:
		return spec.RuntimeRust
	case spec.LangPython:
		data, err := fs.ReadFile(fsys, ".python-version")
		if err == nil {
			v := strings.TrimSpace(string(data))
			switch {
			case strings.HasPrefix(v, "3.9"):
				return spec.RuntimePython39
			case strings.HasPrefix(v, "3.10"):
				return spec.RuntimePython310
			}
		}
		return spec.RuntimePython311
	}

	if pkg != nil {
		node := pkg.Engines["node"]
		switch {
		case strings.Contains(node, "20"):
			return spec.RuntimeNode20
		case strings.Contains(node, "18"):
			return spec.RuntimeNode18
		case strings.Contains(node, "16"):
			return spec.RuntimeNode16
		}
	}
	return spec.RuntimeNode20
}

func detectDeployment(present map[string]bool) spec.Deployment {
	switch {
	case present["Dockerfile"]:
		return spec.DeployContainer
	case present["serverless.yml"]:
		return spec.DeployServerless
	default:
		return spec.DeployContainer
	}
}
