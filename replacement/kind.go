package replacement

import (
	"fmt"
	"strings"
)

// Kind selects one of the replacement policies.
// The numeric values match the selector numbering used by trace-driven
// championship harnesses, so configuration files may use either form.
type Kind int

const (
	// LRU evicts the least recently used way.
	LRU Kind = 0
	// Random evicts a uniformly chosen way.
	Random Kind = 1
	// LIRSPlus is the stack-and-queue reuse-distance policy.
	LIRSPlus Kind = 2
	// AdaptiveMLRU is the hot/cold partitioning policy.
	AdaptiveMLRU Kind = 3
)

var kindNames = map[Kind]string{
	LRU:          "lru",
	Random:       "random",
	LIRSPlus:     "lirsplus",
	AdaptiveMLRU: "mlru",
}

// Kinds returns every supported policy in selector order.
func Kinds() []Kind {
	return []Kind{LRU, Random, LIRSPlus, AdaptiveMLRU}
}

// Valid reports whether k names a supported policy.
func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind accepts a policy name (case-insensitive, "lirs" and "adaptive-mlru"
// are accepted as aliases) or its selector number.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "lirs", "lirs+", "lirs-plus":
		return LIRSPlus, nil
	case "adaptive-mlru", "adaptivemlru":
		return AdaptiveMLRU, nil
	}
	for kind, kindName := range kindNames {
		if name == kindName || name == fmt.Sprint(int(kind)) {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// AccessType is the caller's access classification. The engine treats it
// as an opaque tag and only stores it for diagnostics.
type AccessType uint32

// Access types produced by the trace front end.
const (
	IFetch AccessType = iota
	Load
	Store
	Prefetch
	Writeback
)

var accessTypeNames = [...]string{"ifetch", "load", "store", "prefetch", "writeback"}

func (t AccessType) String() string {
	if int(t) < len(accessTypeNames) {
		return accessTypeNames[t]
	}
	return fmt.Sprintf("type%d", uint32(t))
}

// ParseAccessType accepts a type name or its number.
func ParseAccessType(s string) (AccessType, bool) {
	name := strings.ToLower(s)
	for i, n := range accessTypeNames {
		if name == n || name == fmt.Sprint(i) {
			return AccessType(i), true
		}
	}
	switch name {
	case "r", "read":
		return Load, true
	case "w", "write", "rfo":
		return Store, true
	case "i":
		return IFetch, true
	case "p":
		return Prefetch, true
	case "wb":
		return Writeback, true
	}
	return 0, false
}

// Access describes the request that triggered a decision.
type Access struct {
	// ThreadID is passed through untouched.
	ThreadID uint32
	// PC is the program counter of the requesting instruction.
	PC uint64
	// Address is the (block-aligned) physical address.
	Address uint64
	// Type is the access classification.
	Type AccessType
}

// Victim is the outcome of a victim selection: either a way to evict or an
// instruction to skip inserting the new line.
type Victim struct {
	way    int
	bypass bool
}

// Evict returns a Victim naming way.
func Evict(way int) Victim {
	return Victim{way: way}
}

// Bypass returns a Victim telling the caller not to insert the line.
func Bypass() Victim {
	return Victim{way: -1, bypass: true}
}

// Way returns the way to evict; ok is false for a bypass.
func (v Victim) Way() (way int, ok bool) {
	if v.bypass {
		return 0, false
	}
	return v.way, true
}

// IsBypass reports whether the caller should skip insertion.
func (v Victim) IsBypass() bool { return v.bypass }

func (v Victim) String() string {
	if v.bypass {
		return "bypass"
	}
	return fmt.Sprintf("way %d", v.way)
}
