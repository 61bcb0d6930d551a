package replacement

import "fmt"

type constError string

func (errStr constError) Error() string { return string(errStr) }

const (
	// ErrInvalidGeometry may be returned from [New].
	ErrInvalidGeometry = constError("invalid cache geometry")
	// ErrUnknownPolicy may be returned from [New], [Engine.SetPolicy]
	// and [ParseKind].
	ErrUnknownPolicy = constError("unknown replacement policy")
)

// MinimumAssociativity is the smallest associativity accepted by [New].
// Both partitioning policies need at least one line outside the protected
// region.
const MinimumAssociativity = 2

func geometryError(numSets, assoc int) error {
	return fmt.Errorf(
		"%w: need sets >=1 and ways >=%d but got %d sets of %d ways",
		ErrInvalidGeometry, MinimumAssociativity, numSets, assoc)
}

func unknownPolicyError(kind Kind) error {
	return fmt.Errorf("%w: %d", ErrUnknownPolicy, int(kind))
}
