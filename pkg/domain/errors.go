package domain

import "errors"

// ErrInvalidReference is returned when an operation names a node that does not exist
// in a context where the reference must be valid (edge endpoints, parent of a new node).
var ErrInvalidReference = errors.New("invalid reference")

// ErrNotFound is returned by lookups of unknown nodes, edges or names.
var ErrNotFound = errors.New("not found")

// ErrIOFailure wraps every failure of reading or writing a mind-map file or an export.
var ErrIOFailure = errors.New("i/o failure")

// ErrExitRequested signals that the process should stop before the editor starts (e.g. --help).
var ErrExitRequested = errors.New("exit requested")

// ErrNoFile is returned when saving a document that has never been associated with a path.
var ErrNoFile = errors.New("document has no file")

// ErrDuplicateEdge is returned when connecting two nodes that are already connected.
var ErrDuplicateEdge = errors.New("edge already exists")

// ErrSettingNotFound is returned by settings stores for unknown keys.
var ErrSettingNotFound = errors.New("setting not found")

// ErrInvalidSize is returned for export sizes that are empty or exceed the export limits.
var ErrInvalidSize = errors.New("invalid size")
