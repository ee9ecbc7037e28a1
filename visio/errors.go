package visio

import "errors"

var (
	// ErrNoSuchProperty is returned when a requested named property does
	// not exist on the external document object.
	ErrNoSuchProperty = errors.New("no such property")

	// ErrNoSuchCell is returned when a requested named cell does not exist
	// on a shape.
	ErrNoSuchCell = errors.New("no such cell")

	// ErrUnknownMaster is returned when a master shape name was never
	// registered by any loaded stencil.
	ErrUnknownMaster = errors.New("unknown master shape")

	// ErrBadIndex is returned when a master resolution index is out of
	// range for the registered list.
	ErrBadIndex = errors.New("master index out of range")

	// ErrShapeDeleted is returned by any operation on a shape handle that
	// has already been deleted.
	ErrShapeDeleted = errors.New("shape deleted")

	// ErrAmbiguousConnection is returned when an auto-connect call did not
	// produce exactly one new connection, so the created connector cannot
	// be identified.
	ErrAmbiguousConnection = errors.New("ambiguous connection result")
)
