package hydrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/hydrate/pkg/sot"
)

func TestDestDir(t *testing.T) {
	var tests = []struct {
		it     string
		subdir Subdir
		want   string
	}{
		{
			it:     "should place in the output root",
			subdir: SubdirNone,
			want:   "out",
		},
		{
			it:     "should place in a group subdirectory",
			subdir: SubdirGroup,
			want:   filepath.Join("out", "prod"),
		},
		{
			it:     "should place in a cluster subdirectory",
			subdir: SubdirCluster,
			want:   filepath.Join("out", "cl1"),
		},
	}

	for _, tst := range tests {
		t.Run(tst.it, func(t *testing.T) {
			x := &Hydrator{Out: "out", OutputSubdir: tst.subdir}
			got := x.destDir(sot.Row{Name: "cl1", Group: "prod"})
			assert.Equal(t, tst.want, got)
		})
	}
}

func TestSplitStream(t *testing.T) {
	stage := func(t *testing.T, text string) (string, string) {
		t.Helper()
		d := t.TempDir()
		p := filepath.Join(d, "cl1.yaml")
		require.NoError(t, os.WriteFile(p, []byte(text), 0644))
		return p, filepath.Join(d, "split")
	}

	t.Run("should write one file per resource", func(t *testing.T) {
		staged, dir := stage(t, testManifest)

		require.NoError(t, splitStream(staged, dir))

		b, err := os.ReadFile(filepath.Join(dir, "configmap_default_env.yaml"))
		require.NoError(t, err)
		assert.Equal(t, `apiVersion: v1
kind: ConfigMap
metadata:
  name: env
  namespace: default
data:
  region: eu
`, string(b))

		b, err = os.ReadFile(filepath.Join(dir, "deployment_default_web.yaml"))
		require.NoError(t, err)
		assert.Equal(t, `apiVersion: apps/v1
kind: Deployment
metadata:
  name: web
  namespace: default
spec:
  replicas: 2
`, string(b))

		// everything is mapped, no leftover stream file.
		assert.NoFileExists(t, filepath.Join(dir, "cl1.yaml"))
	})

	t.Run("should keep unidentifiable documents together", func(t *testing.T) {
		staged, dir := stage(t, testManifest+"---\n# fragment without kind\nregion: eu\n")

		require.NoError(t, splitStream(staged, dir))

		b, err := os.ReadFile(filepath.Join(dir, "cl1.yaml"))
		require.NoError(t, err)
		assert.Contains(t, string(b), "region: eu")
		assert.NotContains(t, string(b), "kind: ConfigMap")
	})

	t.Run("should skip empty documents", func(t *testing.T) {
		staged, dir := stage(t, "---\n# just a comment\n---\n"+testManifest)

		require.NoError(t, splitStream(staged, dir))

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, entries, 2)
	})

	t.Run("should refuse resources that overwrite each other", func(t *testing.T) {
		// same kind, namespace and name in another api version.
		staged, dir := stage(t, testManifest+`---
apiVersion: v2
kind: ConfigMap
metadata:
  name: env
  namespace: default
`)

		err := splitStream(staged, dir)

		var are *AmbiguousResourceError
		require.ErrorAs(t, err, &are)
		assert.Len(t, are.Duplicates, 2)

		// nothing is written when the stream is ambiguous.
		assert.NoDirExists(t, dir)
	})
}

func TestPlace(t *testing.T) {
	newWs := func(t *testing.T) (*workspace, string) {
		t.Helper()
		root := t.TempDir()
		ws := &workspace{root: root, render: filepath.Join(root, "render")}
		require.NoError(t, os.MkdirAll(ws.render, 0755))
		staged := filepath.Join(ws.render, "cl1.yaml")
		require.NoError(t, os.WriteFile(staged, []byte(testManifest), 0644))
		return ws, staged
	}

	t.Run("should promote the manifest stream", func(t *testing.T) {
		ws, staged := newWs(t)
		x := &Hydrator{Out: t.TempDir(), OutputSubdir: SubdirGroup}

		placed, err := x.place(ws, staged, sot.Row{Name: "cl1", Group: "prod"})
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(x.Out, "prod", "cl1.yaml"), placed)
		b, err := os.ReadFile(placed)
		require.NoError(t, err)
		assert.Equal(t, testManifest, string(b))
		assert.NoFileExists(t, staged)
	})

	t.Run("should replace a previous run", func(t *testing.T) {
		ws, staged := newWs(t)
		x := &Hydrator{Out: t.TempDir(), OutputSubdir: SubdirNone}
		mustWriteFile(t, filepath.Join(x.Out, "cl1.yaml"), "stale\n")

		placed, err := x.place(ws, staged, sot.Row{Name: "cl1", Group: "prod"})
		require.NoError(t, err)

		b, err := os.ReadFile(placed)
		require.NoError(t, err)
		assert.Equal(t, testManifest, string(b))
	})

	t.Run("should promote split files wholesale", func(t *testing.T) {
		ws, staged := newWs(t)
		x := &Hydrator{Out: t.TempDir(), OutputSubdir: SubdirCluster, Split: true}

		placed, err := x.place(ws, staged, sot.Row{Name: "cl1", Group: "prod"})
		require.NoError(t, err)

		assert.Equal(t, filepath.Join(x.Out, "cl1"), placed)
		assert.FileExists(t, filepath.Join(placed, "configmap_default_env.yaml"))
		assert.FileExists(t, filepath.Join(placed, "deployment_default_web.yaml"))
	})

	t.Run("should not touch the output tree when splitting fails", func(t *testing.T) {
		ws, staged := newWs(t)
		require.NoError(t, os.WriteFile(staged, []byte(testManifest+"---\n"+testManifest), 0644))
		x := &Hydrator{Out: t.TempDir(), OutputSubdir: SubdirCluster, Split: true}

		_, err := x.place(ws, staged, sot.Row{Name: "cl1", Group: "prod"})

		var are *AmbiguousResourceError
		require.ErrorAs(t, err, &are)
		entries, err := os.ReadDir(x.Out)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
