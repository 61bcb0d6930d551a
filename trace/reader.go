package trace

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/llcsim/replacement"
)

// Reader decodes records from the text format.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader returns a Reader consuming r.
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next returns the next record, or io.EOF after the last one.
func (r *Reader) Next() (Record, error) {
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(r.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		rec, err := parseRecord(text)
		if err != nil {
			return Record{}, &ParseError{Line: r.line, Text: text, Err: err}
		}
		return rec, nil
	}
	if err := r.scanner.Err(); err != nil {
		return Record{}, fmt.Errorf("reading trace: %w", err)
	}
	return Record{}, io.EOF
}

// ReadAll returns every remaining record.
func (r *Reader) ReadAll() ([]Record, error) {
	var records []Record
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
}

func parseRecord(text string) (Record, error) {
	fields := strings.Fields(text)
	if len(fields) < 3 || len(fields) > 4 {
		return Record{}, fmt.Errorf("%w: want 3 or 4 fields, got %d",
			ErrMalformedRecord, len(fields))
	}

	var rec Record
	t, ok := replacement.ParseAccessType(fields[0])
	if !ok {
		return Record{}, fmt.Errorf("%w: unknown access type %q",
			ErrMalformedRecord, fields[0])
	}
	rec.Type = t

	var err error
	if rec.PC, err = parseHex(fields[1]); err != nil {
		return Record{}, fmt.Errorf("%w: pc: %w", ErrMalformedRecord, err)
	}
	if rec.Address, err = parseHex(fields[2]); err != nil {
		return Record{}, fmt.Errorf("%w: address: %w", ErrMalformedRecord, err)
	}
	if len(fields) == 4 {
		tid, err := strconv.ParseUint(fields[3], 10, 32)
		if err != nil {
			return Record{}, fmt.Errorf("%w: thread: %w", ErrMalformedRecord, err)
		}
		rec.ThreadID = uint32(tid)
	}
	return rec, nil
}

func parseHex(s string) (uint64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return strconv.ParseUint(s, 16, 64)
}
