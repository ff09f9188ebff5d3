// Package oci publishes rendered manifests to an OCI registry so clusters can
// pull them like any other artifact.
package oci

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/crane"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/empty"
	"github.com/google/go-containerregistry/pkg/v1/mutate"
	"github.com/google/go-containerregistry/pkg/v1/tarball"
)

// Registry publishes rendered manifests as single layer images.
type Registry struct {
	// Repo is the repository prefix, for example registry.example.org/fleet.
	Repo string
	// Tags are applied to every image, the first one on push.
	// Empty defaults to latest.
	Tags []string
	// Keychain authenticates pushes, DefaultKeychain when nil.
	Keychain authn.Keychain

	Log logr.Logger
}

// Push packages the manifests at path and pushes them to <Repo>/<cluster>.
// Path may be a single manifest file or a directory of split manifests.
func (r *Registry) Push(ctx context.Context, path, cluster string) error {
	tags := r.Tags
	if len(tags) == 0 {
		tags = []string{"latest"}
	}

	ref := r.reference(cluster, tags[0])
	if _, err := name.ParseReference(ref); err != nil {
		return fmt.Errorf("reference %s: %w", ref, err)
	}

	tmp, err := os.MkdirTemp("", "hydrate-oci-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)

	tp := filepath.Join(tmp, "manifests.tar.gz")
	if err := archive(path, tp); err != nil {
		return fmt.Errorf("package %s: %w", path, err)
	}

	layer, err := tarball.LayerFromFile(tp)
	if err != nil {
		return err
	}
	img, err := mutate.AppendLayers(empty.Image, layer)
	if err != nil {
		return err
	}

	keychain := r.Keychain
	if keychain == nil {
		keychain = authn.DefaultKeychain
	}

	r.Log.V(2).Info("push", "ref", ref)
	if err := crane.Push(img, ref, crane.WithContext(ctx), crane.WithAuthFromKeychain(keychain)); err != nil {
		return fmt.Errorf("push %s: %w", ref, err)
	}

	for _, t := range tags[1:] {
		r.Log.V(2).Info("tag", "ref", ref, "tag", t)
		if err := crane.Tag(ref, t, crane.WithContext(ctx), crane.WithAuthFromKeychain(keychain)); err != nil {
			return fmt.Errorf("tag %s %s: %w", ref, t, err)
		}
	}

	return nil
}

// Reference returns the image reference for cluster.
func (r *Registry) reference(cluster, tag string) string {
	return fmt.Sprintf("%s/%s:%s", strings.TrimSuffix(r.Repo, "/"), cluster, tag)
}

// Archive writes path (a manifest file or a directory of manifests) as a
// gzipped tar to out.
// Names in the archive are relative to path so an unpack yields the manifests
// directly.
func archive(path, out string) error {
	f, err := os.Create(out)
	if err != nil {
		return err
	}

	zw := gzip.NewWriter(f)
	tw := tar.NewWriter(zw)

	err = addToTar(tw, path)
	if err != nil {
		f.Close()
		return err
	}

	for _, c := range []io.Closer{tw, zw, f} {
		if err := c.Close(); err != nil {
			return err
		}
	}
	return nil
}

func addToTar(tw *tar.Writer, path string) error {
	fi, err := os.Stat(path)
	if err != nil {
		return err
	}

	if !fi.IsDir() {
		return addFile(tw, path, fi, fi.Name())
	}

	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		return addFile(tw, p, info, filepath.ToSlash(rel))
	})
}

func addFile(tw *tar.Writer, path string, fi os.FileInfo, name string) error {
	hdr, err := tar.FileInfoHeader(fi, "")
	if err != nil {
		return err
	}
	hdr.Name = name
	if err := tw.WriteHeader(hdr); err != nil {
		return err
	}

	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	_, err = io.Copy(tw, in)
	return err
}
