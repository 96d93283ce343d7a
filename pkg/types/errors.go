package types

import "errors"

// Table construction and insert errors.
var (
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrEmptyColumn     = errors.New("column name must not be empty")
	ErrArityMismatch   = errors.New("record arity does not match columns")
	ErrTableFull       = errors.New("table row id space exhausted")
)

// Model errors.
var (
	ErrDuplicateTable = errors.New("table name already registered")
	ErrNilTable       = errors.New("table must not be nil")
)

// Selection errors.
var (
	ErrInvalidConstraint = errors.New("invalid selection")
)

// Arithmetic errors.
var (
	ErrOverflow = errors.New("numeric overflow")
)
