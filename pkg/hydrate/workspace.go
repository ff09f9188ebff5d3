package hydrate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	cp "github.com/otiai10/copy"

	"github.com/example/hydrate/pkg/sot"
)

// Workspace is the scratch directory a task renders in.
// The source trees are copied in so a task can expand templates in place
// without affecting its siblings.
type workspace struct {
	// Root is the task private scratch directory.
	root string
	// Overlay is the directory the build tool runs against.
	overlay string
	// Render receives the build tool output before it is placed.
	render string
	// Preserve keeps root on close for debugging.
	preserve bool
}

// NewWorkspace copies the source trees into a fresh scratch directory.
// Layout:
//
//	<root>/<base>/              copy of the base library
//	<root>/<base>/modules/      copy of the modules tree (optional)
//	<root>/<overlays>/<group>/  copy of the group (or default) overlay
//	<root>/render/              build tool output
//
// Base and overlay copies keep their relative position so relative paths in
// resource packages keep working.
func (x *Hydrator) newWorkspace(row sot.Row) (*workspace, error) {
	root, err := os.MkdirTemp(x.TempRoot, "hydrate-"+row.Name+"-")
	if err != nil {
		return nil, &WorkspaceError{Dir: x.TempRoot, Err: err}
	}

	ws := &workspace{
		root:     root,
		render:   filepath.Join(root, "render"),
		preserve: x.PreserveTemp,
	}

	ok := false
	defer func() {
		if !ok {
			ws.close(x.Log)
		}
	}()

	base := filepath.Join(root, filepath.Base(x.Base))
	if err := cp.Copy(x.Base, base); err != nil {
		return nil, &WorkspaceError{Dir: root, Err: fmt.Errorf("copy %s: %w", x.Base, err)}
	}

	if x.Modules != "" {
		opt := cp.Options{
			Skip: func(info os.FileInfo, src, dest string) (bool, error) {
				return info.IsDir() && info.Name() == ".git", nil
			},
		}
		if err := cp.Copy(x.Modules, filepath.Join(base, "modules"), opt); err != nil {
			return nil, &WorkspaceError{Dir: root, Err: fmt.Errorf("copy %s: %w", x.Modules, err)}
		}
	}

	src := x.overlaySource(row.Group)
	ws.overlay = filepath.Join(root, filepath.Base(x.Overlays), filepath.Base(src))
	if dirExists(src) {
		if err := cp.Copy(src, ws.overlay); err != nil {
			return nil, &WorkspaceError{Dir: root, Err: fmt.Errorf("copy %s: %w", src, err)}
		}
	}

	if err := os.MkdirAll(ws.render, 0755); err != nil {
		return nil, &WorkspaceError{Dir: root, Err: err}
	}

	ok = true
	return ws, nil
}

// OverlaySource returns the overlay directory for group, falling back to the
// default overlay when the group has none.
// The returned path does not exist when there is no fallback either; the build
// step turns that into a task failure.
func (x *Hydrator) overlaySource(group string) string {
	p := filepath.Join(x.Overlays, group)
	if dirExists(p) {
		return p
	}

	if x.DefaultOverlay != "" {
		d := filepath.Join(x.Overlays, x.DefaultOverlay)
		if dirExists(d) {
			x.Log.Info("overlay not found, using default", "group", group, "overlay", d)
			return d
		}
	}

	x.Log.Info("no overlay found", "group", group, "dir", p)
	return p
}

// Close removes the workspace unless it is preserved.
func (ws *workspace) close(log logr.Logger) {
	if ws.preserve {
		log.Info("preserving workspace", "dir", ws.root)
		return
	}
	if err := os.RemoveAll(ws.root); err != nil {
		log.Error(err, "remove workspace", "dir", ws.root)
	}
}

// DirExists returns true when path is an existing directory.
func dirExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}
