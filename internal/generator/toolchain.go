// SPDX-License-Identifier: AGPL-3.0-or-later

package generator

import (
	"strings"

	"github.com/repoforge/repoforge/internal/spec"
)

// Toolchain holds the per-language commands and tooling that generated
// documents and workflows refer to.
type Toolchain struct {
	Ecosystem string
	CodeQL    string
	Tools     []string
	Install   string
	Dev       string
	Test      string
	Build     string
}

var toolchains = map[spec.Language]Toolchain{
	spec.LangTypeScript: {
		Ecosystem: "npm",
		CodeQL:    "javascript",
		Tools:     []string{"Node.js", "npm"},
		Install:   "npm install",
		Dev:       "npm run dev",
		Test:      "npm test",
		Build:     "npm run build",
	},
	spec.LangPython: {
		Ecosystem: "pip",
		CodeQL:    "python",
		Tools:     []string{"Python", "pip"},
		Install:   "pip install -r requirements.txt",
		Dev:       "python -m app",
		Test:      "pytest",
		Build:     "python -m build",
	},
	spec.LangGo: {
		Ecosystem: "gomod",
		CodeQL:    "go",
		Tools:     []string{"Go 1.22+"},
		Install:   "go mod download",
		Dev:       "go run ./...",
		Test:      "go test ./...",
		Build:     "go build ./...",
	},
	spec.LangRust: {
		Ecosystem: "cargo",
		CodeQL:    "rust",
		Tools:     []string{"Rust 1.70+", "Cargo"},
		Install:   "cargo fetch",
		Dev:       "cargo run",
		Test:      "cargo test",
		Build:     "cargo build --release",
	},
}

// ToolchainFor returns the toolchain for lang. Unknown languages and
// javascript fall back to the Node toolchain.
func ToolchainFor(lang spec.Language, runtime spec.Runtime) Toolchain {
	tc, ok := toolchains[lang]
	if !ok {
		tc = toolchains[spec.LangTypeScript]
	}
	tc.Tools = append([]string(nil), tc.Tools...)
	switch {
	case lang == spec.LangPython:
		tc.Tools[0] = "Python " + pythonVersion(runtime)
	case !ok || lang.IsNode():
		tc.Tools[0] = "Node.js " + nodeVersion(runtime)
	}
	return tc
}

// nodeVersion maps node20 to "20", defaulting to the current LTS.
func nodeVersion(r spec.Runtime) string {
	if v, ok := strings.CutPrefix(string(r), "node"); ok && v != "" {
		return v
	}
	return "20"
}

// pythonVersion maps python311 to "3.11", defaulting to 3.11.
func pythonVersion(r spec.Runtime) string {
	v, ok := strings.CutPrefix(string(r), "python")
	if !ok || len(v) < 2 {
		return "3.11"
	}
	return v[:1] + "." + v[1:]
}
