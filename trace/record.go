// Package trace reads, writes and generates memory access traces for the
// last-level cache model.
//
// The text format holds one access per line:
//
//	<type> <pc> <address> [thread]
//
// Numbers are hexadecimal with an optional 0x prefix. The type is an access
// type name ("load", "store", ...), a short alias ("r", "w") or its number.
// Blank lines and lines starting with '#' are ignored.
package trace

import (
	"fmt"

	"github.com/sarchlab/llcsim/replacement"
)

// ErrMalformedRecord is wrapped by every [ParseError].
const ErrMalformedRecord = constError("malformed trace record")

type constError string

func (errStr constError) Error() string { return string(errStr) }

// ParseError reports a record that could not be decoded.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Record is one memory access.
type Record struct {
	Type     replacement.AccessType
	PC       uint64
	Address  uint64
	ThreadID uint32
}

// Access converts the record to an engine request.
func (r Record) Access() replacement.Access {
	return replacement.Access{
		ThreadID: r.ThreadID,
		PC:       r.PC,
		Address:  r.Address,
		Type:     r.Type,
	}
}

func (r Record) String() string {
	if r.ThreadID != 0 {
		return fmt.Sprintf("%s %#x %#x %d", r.Type, r.PC, r.Address, r.ThreadID)
	}
	return fmt.Sprintf("%s %#x %#x", r.Type, r.PC, r.Address)
}
