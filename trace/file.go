package trace

import (
	"io"
	"os"
	"strings"

	"github.com/golang/snappy"
)

// CompressedSuffix marks trace files stored as a snappy framed stream.
const CompressedSuffix = ".sz"

// IsCompressed reports whether path names a snappy trace.
func IsCompressed(path string) bool {
	return strings.HasSuffix(path, CompressedSuffix)
}

type readCloser struct {
	io.Reader
	file *os.File
}

func (r readCloser) Close() error { return r.file.Close() }

// Open opens a trace file for reading, decompressing .sz files.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	if !IsCompressed(path) {
		return f, nil
	}
	return readCloser{Reader: snappy.NewReader(f), file: f}, nil
}

type writeCloser struct {
	*snappy.Writer
	file *os.File
}

func (w writeCloser) Close() error {
	if err := w.Writer.Close(); err != nil {
		w.file.Close()
		return err
	}
	return w.file.Close()
}

// Create creates a trace file for writing, compressing .sz files. Close
// flushes the compressed stream.
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if !IsCompressed(path) {
		return f, nil
	}
	return writeCloser{Writer: snappy.NewBufferedWriter(f), file: f}, nil
}
