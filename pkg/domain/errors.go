package domain

import "errors"

// ErrDefinitionNotFound is returned when a definition name cannot be found in a store.
var ErrDefinitionNotFound = errors.New("definition not found")

// ErrSchemaNotFound is returned when a catalog has no schema registered under a name.
var ErrSchemaNotFound = errors.New("schema not found")

// ErrReadOnly is returned by stores that cannot be written to.
var ErrReadOnly = errors.New("store is read-only")
