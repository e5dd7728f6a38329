package fetcher

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewBOMReader drops a leading UTF-8 byte order mark from r. A UTF-16 BOM
// switches decoding to UTF-16 of that byte order. Input without a BOM passes
// through byte for byte.
func NewBOMReader(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(transform.Nop))
}

// HasBOM reports whether the file at path starts with a UTF-8 byte order mark.
func HasBOM(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, eris.Wrapf(err, "bom: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	head := make([]byte, len(utf8BOM))
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false, eris.Wrapf(err, "bom: read %s", path)
	}
	return bytes.Equal(head[:n], utf8BOM), nil
}

// StripBOMFile rewrites path in place without its leading UTF-8 byte order
// mark. Files without one are left untouched. The rewrite goes through a
// temporary file in the same directory and is renamed over the original.
// Returns whether the file was changed.
func StripBOMFile(path string) (bool, error) {
	has, err := HasBOM(path)
	if err != nil || !has {
		return false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, eris.Wrapf(err, "bom: stat %s", path)
	}

	src, err := os.Open(path)
	if err != nil {
		return false, eris.Wrapf(err, "bom: open %s", path)
	}
	defer src.Close() //nolint:errcheck

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".bom-*")
	if err != nil {
		return false, eris.Wrapf(err, "bom: create temp for %s", path)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	w := bufio.NewWriter(tmp)
	if _, err := io.Copy(w, NewBOMReader(src)); err != nil {
		cleanup()
		return false, eris.Wrapf(err, "bom: rewrite %s", path)
	}
	if err := w.Flush(); err != nil {
		cleanup()
		return false, eris.Wrapf(err, "bom: flush %s", path)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		cleanup()
		return false, eris.Wrapf(err, "bom: chmod %s", tmpPath)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return false, eris.Wrapf(err, "bom: close %s", tmpPath)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return false, eris.Wrapf(err, "bom: replace %s", path)
	}
	return true, nil
}

// StripResult is the outcome of stripping one file.
type StripResult struct {
	Path    string
	Changed bool
	Err     error
}

// StripBOMFiles runs StripBOMFile over paths with at most limit files in
// flight. A failing file does not stop the others; results keep the order of
// paths. The returned error is non-nil only when ctx ends the run early.
func StripBOMFiles(ctx context.Context, paths []string, limit int) ([]StripResult, error) {
	if limit < 1 {
		limit = 1
	}
	results := make([]StripResult, len(paths))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range paths {
		if gCtx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				results[i] = StripResult{Path: path, Err: err}
				return nil
			}
			changed, err := StripBOMFile(path)
			results[i] = StripResult{Path: path, Changed: changed, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, eris.Wrap(err, "bom: strip cancelled")
	}
	return results, nil
}
