// Package hydrate renders the manifests of single clusters; copy the source
// packages into a scratch directory, expand templates, run the build tool and
// place the result in the output tree.
package hydrate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/go-logr/logr"

	"github.com/example/hydrate/pkg/sot"
	"github.com/example/hydrate/pkg/util/yamlx"
)

// Hydrator renders cluster manifests.
// The exported fields configure all tasks alike; a Hydrator is safe for
// concurrent use as long as they are not changed after the first Run.
type Hydrator struct {
	// Base is the directory with the shared resource packages.
	Base string
	// Overlays is the directory with one subdirectory per cluster group.
	Overlays string
	// DefaultOverlay names the overlay for groups that have none.
	DefaultOverlay string
	// Modules is an optional directory that is copied into the base copy.
	Modules string

	// Out is the output tree root.
	Out string
	// OutputSubdir selects where in the output tree manifests are placed.
	OutputSubdir Subdir
	// Split writes one file per resource instead of one manifest stream.
	Split bool

	// Validate runs the policy check tool on placed output.
	Validate bool
	// ConstraintRoots are directories searched for all/ and group scoped
	// constraint directories.
	ConstraintRoots []string
	// PolicyPaths are constraint files or directories that always apply.
	PolicyPaths []string

	// TempRoot overrides the directory scratch directories are created in.
	TempRoot string
	// PreserveTemp keeps scratch directories for debugging.
	PreserveTemp bool

	// Environ are the environment variables during template expansion.
	Environ []string
	// Values are the template values shared by all tasks.
	// Row columns override them.
	Values yamlx.Values
	// TemplateFn are extra template functions.
	TemplateFn template.FuncMap

	// Build knows how to invoke the manifest build tool.
	Build Builder
	// Check knows how to invoke the policy check tool.
	Check Checker
	// Publish pushes placed output to a registry when set.
	Publish Publisher

	Log logr.Logger
}

// Builder provides methods to invoke the manifest build tool.
type Builder interface {
	// Build renders dir and writes the resulting manifest stream to out.
	Build(ctx context.Context, dir, out string) (string, string, error)
}

// Checker provides methods to invoke the policy check tool.
type Checker interface {
	// Test checks the union of paths; constraints and manifests.
	Test(ctx context.Context, paths ...string) (string, string, error)
}

// Publisher provides methods to push placed output to a registry.
type Publisher interface {
	// Push publishes the manifests at path under name.
	Push(ctx context.Context, path, name string) error
}

// Subdir selects where in the output tree manifests are placed; see Subdir*
// constants.
type Subdir int

const (
	// SubdirNone places manifests in the output root.
	SubdirNone Subdir = iota
	// SubdirGroup places manifests in a subdirectory named after the group.
	SubdirGroup
	// SubdirCluster places manifests in a subdirectory named after the cluster.
	SubdirCluster
)

// SubdirFromString returns the Subdir based on arg.
func SubdirFromString(arg string) (Subdir, error) {
	switch arg {
	case "none":
		return SubdirNone, nil
	case "group":
		return SubdirGroup, nil
	case "cluster":
		return SubdirCluster, nil
	}
	return SubdirNone, fmt.Errorf("expected output-subdir to be one of [none,group,cluster] instead of: %s", arg)
}

// Run renders the manifests of row.
// Errors are recorded in the result, never returned; a failing task must not
// affect its siblings.
func (x *Hydrator) Run(ctx context.Context, row sot.Row) Result {
	res := Result{Name: row.Name, Group: row.Group}

	fail := func(step *StepStatus, err error) Result {
		*step = StepFailure
		res.Errs = append(res.Errs, err)
		return res
	}

	if err := ctx.Err(); err != nil {
		res.Errs = append(res.Errs, err)
		return res
	}

	x.log(row.Name, "workspace", "")
	ws, err := x.newWorkspace(row)
	if err != nil {
		return fail(&res.Template, err)
	}
	defer ws.close(x.Log)

	x.log(row.Name, "template", ws.root)
	if err := x.materialize(ws, row); err != nil {
		return fail(&res.Template, err)
	}
	res.Template = StepSuccess

	x.log(row.Name, "build", ws.overlay)
	staged, err := x.build(ctx, ws, row.Name)
	if err != nil {
		return fail(&res.Build, err)
	}

	placed, err := x.place(ws, staged, row)
	if err != nil {
		return fail(&res.Build, err)
	}
	res.Build = StepSuccess

	if x.Validate {
		x.log(row.Name, "validate", placed)
		st, err := x.validate(ctx, row.Group, placed)
		res.Validate = st
		if err != nil {
			res.Errs = append(res.Errs, err)
			return res
		}
	}

	if x.Publish != nil {
		x.log(row.Name, "publish", placed)
		if err := x.Publish.Push(ctx, placed, row.Name); err != nil {
			return fail(&res.Publish, err)
		}
		res.Publish = StepSuccess
	}

	return res
}

// Build runs the build tool against the workspace overlay directory and
// returns the staged manifest path.
func (x *Hydrator) build(ctx context.Context, ws *workspace, name string) (string, error) {
	if !dirExists(ws.overlay) {
		return "", &BuildError{Dir: ws.overlay, Err: errors.New("overlay directory does not exist")}
	}

	out := filepath.Join(ws.render, name+".yaml")
	_, stderr, err := x.Build.Build(ctx, ws.overlay, out)
	if err != nil {
		return "", &BuildError{Dir: ws.overlay, Stderr: stderr, Err: err}
	}

	return out, nil
}

// Log a line for step of task name.
func (x *Hydrator) log(name, step, path string) {
	x.Log.V(1).Info(step, "name", name, "path", path)
}
