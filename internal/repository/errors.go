package repository

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Violation classifies a store constraint failure.
type Violation string

const (
	ViolationUnique     Violation = "unique"
	ViolationForeignKey Violation = "foreign_key"
	ViolationConnection Violation = "connection"
)

// StoreError is the tagged form of a low-level store failure. It carries the
// raw constraint name so higher layers can map it to a field-level error.
type StoreError struct {
	Violation  Violation
	Constraint string
	Table      string
	Err        error
}

func (e *StoreError) Error() string {
	return string(e.Violation) + " violation on " + e.Table + " (" + e.Constraint + "): " + e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// Postgres error classes. 08 is connection_exception.
const (
	pgUniqueViolation = "23505"
	pgFKViolation     = "23503"
	pgConnectionClass = "08"
)

// Tag converts driver errors into StoreError values. sql.ErrNoRows passes
// through untouched so callers can keep using errors.Is.
func Tag(err error) error {
	if err == nil || errors.Is(err, sql.ErrNoRows) {
		return err
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch {
	case string(pqErr.Code) == pgUniqueViolation:
		return &StoreError{Violation: ViolationUnique, Constraint: pqErr.Constraint, Table: pqErr.Table, Err: err}
	case string(pqErr.Code) == pgFKViolation:
		return &StoreError{Violation: ViolationForeignKey, Constraint: pqErr.Constraint, Table: pqErr.Table, Err: err}
	case pqErr.Code.Class() == pgConnectionClass:
		return &StoreError{Violation: ViolationConnection, Table: pqErr.Table, Err: err}
	}
	return err
}

// AsStoreError unwraps a StoreError if present.
func AsStoreError(err error) (*StoreError, bool) {
	var se *StoreError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
