package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

const StdinPath = "-"

var (
	ErrSource = errors.New("source error")

	gzipMagic = []byte{0x1f, 0x8b}
)

// SourceError is returned when a log source cannot be opened or read.
type SourceError struct {
	Path string
	Err  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Err.Error())
}

func (e *SourceError) Unwrap() []error {
	return []error{ErrSource, e.Err}
}

type sourceReader struct {
	io.Reader
	closers []io.Closer
}

func (r *sourceReader) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenSource opens a log file, or stdin when path is "-".
func OpenSource(path string) (io.ReadCloser, error) {
	if path == StdinPath {
		return NewSourceReader(path, io.NopCloser(os.Stdin))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, &SourceError{Path: path, Err: err}
	}
	return NewSourceReader(path, f)
}

// NewSourceReader decompresses rc transparently when it starts with the gzip
// magic bytes. Closing the returned reader closes rc.
func NewSourceReader(path string, rc io.ReadCloser) (io.ReadCloser, error) {
	br := bufio.NewReader(rc)
	magic, err := br.Peek(len(gzipMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		rc.Close()
		return nil, &SourceError{Path: path, Err: err}
	}
	if len(magic) < len(gzipMagic) || magic[0] != gzipMagic[0] || magic[1] != gzipMagic[1] {
		return &sourceReader{Reader: br, closers: []io.Closer{rc}}, nil
	}

	zr, err := gzip.NewReader(br)
	if err != nil {
		rc.Close()
		return nil, &SourceError{Path: path, Err: err}
	}
	return &sourceReader{Reader: zr, closers: []io.Closer{zr, rc}}, nil
}
