package util

import (
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
)

type multiCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiCloser) Close() error {
	var firstErr error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

type multiWriteCloser struct {
	io.Writer
	closers []io.Closer
}

func (m *multiWriteCloser) Close() error {
	var firstErr error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func IsBzip2(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".bz2")
}

// OpenFile. open path for reading, transparently decompressing *.bz2
func OpenFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, WrapErrorf(err, ErrNotFound, "open %s", path)
	}
	if !IsBzip2(path) {
		return f, nil
	}

	bz, err := bzip2.NewReader(f, nil)
	if err != nil {
		f.Close()
		return nil, WrapErrorf(err, ErrBadParamInput, "open bzip2 stream %s", path)
	}
	return &multiCloser{Reader: bz, closers: []io.Closer{bz, f}}, nil
}

// CreateFile. create path for writing, compressing with bzip2 when path ends with .bz2.
// Close flushes the compressor before closing the file.
func CreateFile(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, WrapErrorf(err, ErrInternalServerError, "create %s", path)
	}
	if !IsBzip2(path) {
		return f, nil
	}

	bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
	if err != nil {
		f.Close()
		return nil, WrapErrorf(err, ErrInternalServerError, "create bzip2 stream %s", path)
	}
	return &multiWriteCloser{Writer: bz, closers: []io.Closer{bz, f}}, nil
}
