package dynamo

import (
	"errors"
	"fmt"
)

// Construction-time errors. Runtime resolution failures are not errors;
// see the package doc.
var (
	// ErrNilLine indicates a follower or pin was constructed without a line.
	ErrNilLine = errors.New("tearline: nil line reference")

	// ErrNilSolver indicates a missing solver collaborator at setup.
	ErrNilSolver = errors.New("tearline: nil solver reference")

	// ErrNoBoundIndices indicates a pin constructed with an empty index set.
	ErrNoBoundIndices = errors.New("tearline: pin requires at least one bound actor index")

	// ErrParameterBounds indicates a tuning value outside its valid range.
	ErrParameterBounds = errors.New("tearline: parameter out of valid bounds")

	// ErrNoRegistrar indicates a mutator that cannot accept constraints.
	ErrNoRegistrar = errors.New("tearline: mutator does not accept constraints")
)

// SetupError wraps a construction failure with the component that failed.
type SetupError struct {
	Component string
	Wrapped   error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("%s: %v", e.Component, e.Wrapped)
}

func (e *SetupError) Unwrap() error {
	return e.Wrapped
}
