package ls

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidArity    = errors.New("invalid arity")
	ErrInvalidWidth    = errors.New("invalid width")
	ErrDomainViolation = errors.New("domain violation")
	ErrUnknownID       = errors.New("unknown node id")
	// ErrInvariantViolation is fatal, the engine refuses further moves.
	ErrInvariantViolation = errors.New("invariant violation")
)
