// Package archive opens test output artifacts and extracts failure signatures
// from captured output.
package archive

import (
	"compress/gzip"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

// StdinName is the input path selecting standard input.
const StdinName = "-"

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for i := len(rc.closers) - 1; i >= 0; i-- {
		if err := rc.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens the test output at path for reading. "-" reads standard input;
// files ending in .gz or .xz are decompressed transparently.
func Open(path string) (io.ReadCloser, error) {
	if path == StdinName {
		return io.NopCloser(os.Stdin), nil
	}
	fd, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open input %s", path)
	}
	rc, err := Decompress(fd, path)
	if err != nil {
		fd.Close()
		return nil, err
	}
	return rc, nil
}

// Decompress wraps r with the decompressor matching the extension of name.
// The returned ReadCloser closes r too, when r is a Closer.
func Decompress(r io.Reader, name string) (io.ReadCloser, error) {
	rc := &readCloser{Reader: r}
	if c, ok := r.(io.Closer); ok {
		rc.closers = append(rc.closers, c)
	}
	switch {
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read gzip input %s", name)
		}
		rc.Reader = gz
		rc.closers = append(rc.closers, gz)
	case strings.HasSuffix(name, ".xz"):
		xzr, err := xz.NewReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read xz input %s", name)
		}
		rc.Reader = xzr
	}
	return rc, nil
}
