package plugins

import (
	"encoding/json"
	"errors"
	"io/fs"

	"github.com/repoforge/repoforge/internal/compliance"
	"github.com/repoforge/repoforge/internal/generator"
	"github.com/repoforge/repoforge/internal/spec"
)

type nodePlugin struct{}

func (nodePlugin) Name() string { return "node" }

func (nodePlugin) Applicable(s spec.Spec) bool { return s.Language().IsNode() }

func (nodePlugin) Generate(s spec.Spec) []generator.File {
	eslint := `{
  "root": true,
  "extends": ["eslint:recommended"],
  "env": { "node": true, "es2022": true }
}
`
	if s.Language() == spec.LangTypeScript {
		eslint = `{
  "root": true,
  "parser": "@typescript-eslint/parser",
  "plugins": ["@typescript-eslint"],
  "extends": ["eslint:recommended", "plugin:@typescript-eslint/recommended"],
  "env": { "node": true, "es2022": true }
}
`
	}
	return []generator.File{
		{Path: ".npmrc", Content: "engine-strict=true\nsave-exact=true\n"},
		{Path: ".eslintrc.json", Content: eslint},
	}
}

func (nodePlugin) Rules() []compliance.Rule {
	return []compliance.Rule{
		{
			ID:    "node-package-json",
			File:  "package.json",
			Check: compliance.FileExists("package.json", "package.json is required for Node projects"),
		},
		{
			ID:    "node-engines",
			File:  "package.json",
			Check: checkEngines,
		},
	}
}

func checkEngines(fsys fs.FS) error {
	data, err := fs.ReadFile(fsys, "package.json")
	if err != nil {
		// reported by node-package-json
		return nil
	}
	var pkg struct {
		Engines map[string]string `json:"engines"`
	}
	if err := json.Unmarshal(data, &pkg); err != nil {
		return errors.New("package.json is not valid JSON")
	}
	if pkg.Engines["node"] == "" {
		return errors.New("package.json should pin engines.node")
	}
	return nil
}
