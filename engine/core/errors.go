package core

import (
	"errors"
)

var (
	ErrUnknown = errors.New("unknown")

	// Catalog precondition violations. These describe content that the
	// reflection step should never have produced.
	ErrUnknownType         = errors.New("constant references an unknown user defined type")
	ErrZeroElementLength   = errors.New("constant has a zero element length")
	ErrInvalidDimensions   = errors.New("constant has inconsistent row, column or array dimensions")
	ErrRecursiveType       = errors.New("user defined type contains itself by value")
	ErrUnknownBuffer       = errors.New("constant buffer not found")
	ErrDuplicateDefinition = errors.New("duplicate type or buffer definition")

	// Buffer instance failures.
	ErrEmptyRegisterFile      = errors.New("constant buffer maps to zero hardware registers")
	ErrBufferNotLoaded        = errors.New("constant buffer is not loaded")
	ErrBufferLocked           = errors.New("constant buffer is already locked")
	ErrConstantNotFound       = errors.New("constant not found")
	ErrMalformedConstantName  = errors.New("malformed constant name")
	ErrConstantTypeMismatch   = errors.New("value does not match the constant's type")
	ErrOutOfRange             = errors.New("access outside of the constant buffer")
	ErrMaxBufferCountExceeded = errors.New("maximum number of constant buffers reached")

	// Binding.
	ErrPushConstantOverflow = errors.New("register range exceeds the push constant budget")
)
