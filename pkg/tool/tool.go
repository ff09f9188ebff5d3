// Package tool hydrates a fleet; it reads the source of truth, runs the
// render pipeline for every selected row and reports a summary.
package tool

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"

	"github.com/example/hydrate/pkg/hydrate"
	"github.com/example/hydrate/pkg/oci"
	"github.com/example/hydrate/pkg/sot"
	"github.com/example/hydrate/pkg/util/yamlx"
	"github.com/example/hydrate/pkg/vault"
)

// Tool is responsible for hydrating the manifests of all clusters or cluster
// groups selected from the source of truth.
// Rows are hydrated concurrently and independently; one task failing does not
// stop its siblings.
type Tool struct {
	// Environ are the environment variables on Tool invocation.
	Environ []string

	// Mode selects what a source of truth row stands for.
	Mode sot.Mode
	// SotFilepath refers to the csv file that enumerates the fleet.
	SotFilepath string
	// Select filters the rows that are hydrated.
	// The zero value keeps all rows.
	Select sot.Selector

	// BasePath refers to the directory with the shared resource packages.
	BasePath string
	// OverlaysPath refers to the directory with one subdirectory per group.
	OverlaysPath string
	// DefaultOverlay names the overlay for groups that have none.
	DefaultOverlay string
	// ModulesPath optionally refers to a directory that is copied into each
	// workspace next to the base.
	ModulesPath string

	// OutPath refers to the directory that receives hydrated manifests.
	OutPath string
	// OutputSubdir selects where under OutPath manifests are placed.
	OutputSubdir hydrate.Subdir
	// Split writes one file per resource instead of one manifest stream.
	Split bool

	// Workers is the maximum number of rows hydrated concurrently.
	// Less than 1 reads as 1.
	Workers int

	// Validate runs the policy check tool on hydrated output.
	Validate bool
	// ConstraintRoots are directories searched for all/ and group scoped
	// constraint directories.
	ConstraintRoots []string
	// PolicyPaths are constraint files or directories that always apply.
	PolicyPaths []string

	// Registry is the repository prefix hydrated manifests are pushed to.
	// Empty disables publishing.
	Registry string
	// RegistryTags are applied to every pushed image.
	RegistryTags []string

	// ValueFilepath optionally refers to a yaml format file with key-values
	// available to all templates.
	ValueFilepath string
	// VaultPath refers to a directory containing files;
	//	type - vault to read from, valid values are: azure-key-vault | hashicorp-vault | file
	//	other files depending on type, see the pkg/vault backend constructors.
	VaultPath string

	// TempRoot is the directory scratch directories are created in.
	// Empty means the OS default.
	TempRoot string
	// PreserveTemp keeps scratch directories for debugging.
	PreserveTemp bool

	// Build, Check and Publish override the external tools.
	// Nil selects kustomize, gator and the registry client.
	Build   hydrate.Builder
	Check   hydrate.Checker
	Publish hydrate.Publisher

	Log logr.Logger
}

// Run hydrates all selected rows and writes the outcome; a single line on out
// when all tasks succeed, totals and per task lines on errOut otherwise.
// The returned Summary tells how the tasks fared.
// The returned error covers run level problems that prevent tasks from being
// scheduled at all, task failures are in the Summary.
func (t *Tool) Run(ctx context.Context, out, errOut io.Writer) (*Summary, error) {
	// create master vault.
	v, err := vault.New(t.Log, t.VaultPath)
	if err != nil {
		return nil, err
	}

	// get global values.
	var values yamlx.Values
	if t.ValueFilepath != "" {
		b, err := os.ReadFile(t.ValueFilepath)
		if err != nil {
			return nil, fmt.Errorf("values file: %w", err)
		}
		values, err = yamlx.Parse(b)
		if err != nil {
			return nil, fmt.Errorf("values file %s: %w", t.ValueFilepath, err)
		}
	}

	// get the rows of interest.
	tbl, err := sot.Load(t.Log, t.SotFilepath, t.Mode)
	if err != nil {
		return nil, err
	}
	rows := tbl.Select(t.Select)
	t.Log.Info("selected", "rows", len(rows), "total", len(tbl.Rows))

	// all task workspaces live under one run scoped scratch directory.
	tempRoot, err := os.MkdirTemp(t.TempRoot, "hydrate-")
	if err != nil {
		return nil, err
	}
	if t.PreserveTemp {
		t.Log.Info("preserving scratch directory", "dir", tempRoot)
	} else {
		defer os.RemoveAll(tempRoot)
	}

	results := t.hydrateAll(ctx, t.hydrator(v, values, tempRoot), rows)

	s := NewSummary(t.Mode, results)
	s.report(t.Log, out, errOut)

	return s, nil
}

// HydrateAll runs h for every row with at most Workers tasks in flight.
// Results are in row order regardless of completion order.
func (t *Tool) hydrateAll(ctx context.Context, h *hydrate.Hydrator, rows []sot.Row) []hydrate.Result {
	type indexed struct {
		i int
		r hydrate.Result
	}
	done := make(chan indexed, len(rows))

	var g errgroup.Group
	g.SetLimit(t.workers())
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			done <- indexed{i: i, r: h.Run(ctx, row)}
			return nil
		})
	}
	_ = g.Wait() // tasks record their errors in their result.
	close(done)

	answer := make([]hydrate.Result, len(rows))
	for d := range done {
		answer[d.i] = d.r
	}
	return answer
}

// Hydrator returns the task runner configured from the receiver.
func (t *Tool) hydrator(v vault.Getter, values yamlx.Values, tempRoot string) *hydrate.Hydrator {
	h := &hydrate.Hydrator{
		Base:            t.BasePath,
		Overlays:        t.OverlaysPath,
		DefaultOverlay:  t.DefaultOverlay,
		Modules:         t.ModulesPath,
		Out:             t.OutPath,
		OutputSubdir:    t.OutputSubdir,
		Split:           t.Split,
		Validate:        t.Validate,
		ConstraintRoots: t.ConstraintRoots,
		PolicyPaths:     t.PolicyPaths,
		TempRoot:        tempRoot,
		PreserveTemp:    t.PreserveTemp,
		Environ:         t.Environ,
		Values:          values,
		TemplateFn:      tmpltFunctions(v),
		Build:           t.Build,
		Check:           t.Check,
		Publish:         t.Publish,
		Log:             t.Log,
	}

	if h.Build == nil {
		h.Build = hydrate.Kustomize{Environ: t.Environ, Log: t.Log}
	}
	if h.Check == nil {
		h.Check = hydrate.Gator{Environ: t.Environ, Log: t.Log}
	}
	if h.Publish == nil && t.Registry != "" {
		h.Publish = &oci.Registry{
			Repo: t.Registry,
			Tags: t.RegistryTags,
			Log:  t.Log,
		}
	}

	return h
}

func (t *Tool) workers() int {
	if t.Workers < 1 {
		return 1
	}
	return t.Workers
}

// TmpltFunctions returns functions that are available during template
// expansion.
// NB. other functions are defined in package expand.
func tmpltFunctions(v vault.Getter) template.FuncMap {
	r := template.FuncMap{}
	if v != nil {
		r["vault"] = v.Get
	}
	return r
}
