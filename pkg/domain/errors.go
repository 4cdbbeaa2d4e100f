package domain

import "errors"

// ErrDuplicateKey is returned when a property key (or an entry key) is already in use.
var ErrDuplicateKey = errors.New("duplicate key")

// ErrDuplicateEdge is returned when an edge between the same ordered node pair exists.
var ErrDuplicateEdge = errors.New("duplicate edge")

// ErrDuplicateMapping is returned when a node is already bound to the same function.
var ErrDuplicateMapping = errors.New("duplicate node-function mapping")

// ErrSelfLoop is returned when an edge would connect a node to itself.
var ErrSelfLoop = errors.New("self-loop edge")

// ErrDanglingReference is returned when an operation names a node, function or property
// that does not exist.
var ErrDanglingReference = errors.New("dangling reference")

// ErrMissingRequiredField is returned when a required field is empty on create.
var ErrMissingRequiredField = errors.New("missing required field")

// ErrDuplicateID is returned when a caller-supplied id is already taken in its collection.
var ErrDuplicateID = errors.New("duplicate id")

// ErrInvalidValue is returned when a field holds a value outside its allowed set.
var ErrInvalidValue = errors.New("invalid value")

// ErrNotFound is returned when an update or delete targets an unknown id.
var ErrNotFound = errors.New("not found")

// ErrIndexOutOfRange is returned by indexed entry operations.
var ErrIndexOutOfRange = errors.New("index out of range")

// ErrJourneyNotFound is returned when a journey ID cannot be found in a store.
var ErrJourneyNotFound = errors.New("journey not found")
