// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/repoforge/repoforge/cmd/repoctl/internal/clienv"
	"github.com/repoforge/repoforge/internal/generator"
)

// writePlan splits files into those to write and those left alone because
// they already exist and force is off.
type writePlan struct {
	create    []generator.File
	overwrite []generator.File
	skip      []generator.File
}

func planWrites(env *clienv.Env, files []generator.File, force bool) (writePlan, error) {
	var p writePlan
	for _, f := range files {
		_, err := os.Stat(env.Path(f.Path))
		switch {
		case errors.Is(err, os.ErrNotExist):
			p.create = append(p.create, f)
		case err != nil:
			return writePlan{}, err
		case force:
			p.overwrite = append(p.overwrite, f)
		default:
			p.skip = append(p.skip, f)
		}
	}
	return p, nil
}

func (p writePlan) files() []generator.File {
	return append(append([]generator.File{}, p.create...), p.overwrite...)
}

func (p writePlan) print(w io.Writer) {
	for _, f := range p.create {
		_, _ = fmt.Fprintf(w, "  + %s\n", f.Path)
	}
	for _, f := range p.overwrite {
		_, _ = fmt.Fprintf(w, "  ~ %s\n", f.Path)
	}
	for _, f := range p.skip {
		_, _ = fmt.Fprintf(w, "  = %s (exists, use --force to overwrite)\n", f.Path)
	}
}
