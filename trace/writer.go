package trace

import (
	"bufio"
	"fmt"
	"io"
)

// Writer encodes records in the text format.
type Writer struct {
	w *bufio.Writer
}

// NewWriter returns a Writer emitting to w. Call Flush when done.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// Write appends one record.
func (w *Writer) Write(rec Record) error {
	_, err := fmt.Fprintln(w.w, rec.String())
	return err
}

// WriteAll appends records and flushes.
func (w *Writer) WriteAll(records []Record) error {
	for _, rec := range records {
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Flush()
}

// WriteComment appends a '#' line.
func (w *Writer) WriteComment(text string) error {
	_, err := fmt.Fprintf(w.w, "# %s\n", text)
	return err
}

// Flush writes buffered data to the underlying writer.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
