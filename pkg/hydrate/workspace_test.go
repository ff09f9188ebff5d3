package hydrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/stdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/hydrate/pkg/sot"
)

func TestNewWorkspace(t *testing.T) {
	var tests = []struct {
		it             string
		group          string
		defaultOverlay string
		modules        bool
		wantOverlay    string
		wantOverlayDir bool
	}{
		{
			it:             "should copy base and group overlay",
			group:          "prod",
			wantOverlay:    filepath.Join("overlays", "prod"),
			wantOverlayDir: true,
		},
		{
			it:             "should fall back to the default overlay",
			group:          "nosuchgroup",
			defaultOverlay: "generic",
			wantOverlay:    filepath.Join("overlays", "generic"),
			wantOverlayDir: true,
		},
		{
			it:             "should leave the overlay path dangling without fallback",
			group:          "nosuchgroup",
			wantOverlay:    filepath.Join("overlays", "nosuchgroup"),
			wantOverlayDir: false,
		},
		{
			it:             "should merge modules into the base copy without scm internals",
			group:          "prod",
			modules:        true,
			wantOverlay:    filepath.Join("overlays", "prod"),
			wantOverlayDir: true,
		},
	}

	for _, tst := range tests {
		t.Run(tst.it, func(t *testing.T) {
			src := testSources(t)
			x := testHydrator(t, src)
			x.DefaultOverlay = tst.defaultOverlay
			if tst.modules {
				x.Modules = filepath.Join(src, "modules")
			}

			ws, err := x.newWorkspace(sot.Row{Name: "cl1", Group: tst.group})
			require.NoError(t, err)
			defer ws.close(x.Log)

			assert.FileExists(t, filepath.Join(ws.root, "base", "app", "kustomization.yaml"))
			assert.FileExists(t, filepath.Join(ws.root, "base", "app", "cm.yaml.tmpl"))
			assert.DirExists(t, ws.render)

			assert.Equal(t, filepath.Join(ws.root, tst.wantOverlay), ws.overlay)
			if tst.wantOverlayDir {
				assert.FileExists(t, filepath.Join(ws.overlay, "kustomization.yaml"))
			} else {
				assert.NoDirExists(t, ws.overlay)
			}

			if tst.modules {
				assert.FileExists(t, filepath.Join(ws.root, "base", "modules", "mod1", "main.yaml"))
				assert.NoDirExists(t, filepath.Join(ws.root, "base", "modules", ".git"))
			}
		})
	}
}

func TestNewWorkspaceMissingBase(t *testing.T) {
	src := testSources(t)
	x := testHydrator(t, src)
	x.Base = filepath.Join(src, "nosuchdir")

	_, err := x.newWorkspace(sot.Row{Name: "cl1", Group: "prod"})

	var we *WorkspaceError
	require.ErrorAs(t, err, &we)

	// a failed workspace does not linger.
	entries, err := os.ReadDir(x.TempRoot)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWorkspaceClose(t *testing.T) {
	log := stdr.New(nil)

	d := t.TempDir()
	ws := &workspace{root: filepath.Join(d, "ws")}
	require.NoError(t, os.MkdirAll(ws.root, 0755))
	ws.close(log)
	assert.NoDirExists(t, ws.root)

	ws = &workspace{root: filepath.Join(d, "ws2"), preserve: true}
	require.NoError(t, os.MkdirAll(ws.root, 0755))
	ws.close(log)
	assert.DirExists(t, ws.root)
}
