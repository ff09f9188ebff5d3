package hydrate

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	cp "github.com/otiai10/copy"

	"github.com/example/hydrate/pkg/sot"
	"github.com/example/hydrate/pkg/util/yamlx"
)

// DestDir returns the directory row's manifests are placed in.
func (x *Hydrator) destDir(row sot.Row) string {
	switch x.OutputSubdir {
	case SubdirGroup:
		return filepath.Join(x.Out, row.Group)
	case SubdirCluster:
		return filepath.Join(x.Out, row.Name)
	}
	return x.Out
}

// Place moves the staged manifest into the output tree and returns the
// promoted path; the destination file or, when splitting, the destination
// directory.
// Splitting happens in the workspace first so nothing reaches the output tree
// when it fails.
func (x *Hydrator) place(ws *workspace, staged string, row sot.Row) (string, error) {
	dir := x.destDir(row)

	if !x.Split {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
		dst := filepath.Join(dir, filepath.Base(staged))
		if err := rename(staged, dst); err != nil {
			return "", err
		}
		return dst, nil
	}

	sd := filepath.Join(ws.render, "split")
	if err := splitStream(staged, sd); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := cp.Copy(sd, dir); err != nil {
		return "", err
	}

	return dir, nil
}

// SplitStream writes one file per resource of the staged manifest in dir.
// Resources without kind or name are kept together in a file named after the
// staged manifest.
func splitStream(staged, dir string) error {
	b, err := os.ReadFile(staged)
	if err != nil {
		return err
	}

	docs, err := yamlx.SplitDoc(b)
	if err != nil {
		return err
	}

	type entry struct {
		knn KindNamespaceName
		doc []byte
	}
	var entries []entry
	var knns []KindNamespaceName
	var rest [][]byte
	for i, doc := range docs {
		if yamlx.IsEmpty(doc) {
			continue
		}
		knn, err := NewKindNamespaceName(doc)
		if err != nil {
			return fmt.Errorf("document %d: %w", i+1, err)
		}
		if !knn.complete() {
			rest = append(rest, doc)
			continue
		}
		entries = append(entries, entry{knn: knn, doc: doc})
		knns = append(knns, knn)
	}

	if d := duplicates(knns); len(d) > 0 {
		return &AmbiguousResourceError{Duplicates: d}
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	for _, e := range entries {
		if err := writeDoc(filepath.Join(dir, e.knn.Filename()), e.doc); err != nil {
			return err
		}
	}

	if len(rest) > 0 {
		var buf bytes.Buffer
		for i, doc := range rest {
			if i > 0 {
				buf.WriteString("---\n")
			}
			buf.Write(doc)
			if !bytes.HasSuffix(doc, []byte("\n")) {
				buf.WriteByte('\n')
			}
		}
		if err := writeDoc(filepath.Join(dir, filepath.Base(staged)), buf.Bytes()); err != nil {
			return err
		}
	}

	return nil
}

// WriteDoc writes a document making sure it ends with a newline.
func writeDoc(path string, doc []byte) error {
	if !bytes.HasSuffix(doc, []byte("\n")) {
		doc = append(doc, '\n')
	}
	return os.WriteFile(path, doc, 0644)
}

// Rename moves a file, falling back to copy when src and dst are on different
// filesystems.
func rename(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	if err := cp.Copy(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
