package hydrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	multierror "github.com/hashicorp/go-multierror"

	"github.com/example/hydrate/pkg/expand"
	"github.com/example/hydrate/pkg/sot"
	"github.com/example/hydrate/pkg/util/yamlx"
)

// TmpltExt marks a file as a template.
const TmpltExt = ".tmpl"

// Materialize expands all template files in the workspace in place.
// The expanded text is written next to its template with the suffix stripped
// and the template file is removed.
// All broken templates are reported, not just the first one.
func (x *Hydrator) materialize(ws *workspace, row sot.Row) error {
	values := yamlx.Merge(x.Values, yamlx.FromStringMap(row.Columns()))

	var errs *multierror.Error
	err := filepath.WalkDir(ws.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), TmpltExt) {
			return nil
		}
		if err := x.expandFile(path, values); err != nil {
			rp, e := filepath.Rel(ws.root, path)
			if e != nil {
				rp = path
			}
			errs = multierror.Append(errs, &TemplateError{Path: rp, Err: err})
		}
		return nil
	})
	if err != nil {
		errs = multierror.Append(errs, err)
	}

	return errs.ErrorOrNil()
}

// ExpandFile expands one template file with values.
// The result gets the permissions of the template.
func (x *Hydrator) expandFile(path string, values yamlx.Values) error {
	in, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	out, err := expand.Run(x.Environ, path, in, values, x.TemplateFn)
	if err != nil {
		return err
	}

	fi, err := os.Stat(path)
	if err != nil {
		return err
	}

	err = os.WriteFile(strings.TrimSuffix(path, TmpltExt), out, fi.Mode().Perm())
	if err != nil {
		return err
	}

	return os.Remove(path)
}
