package database

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrStudentNotFound is returned by UpdateEmail and Delete when no row has the given ID.
var ErrStudentNotFound = errors.New("student not found")

// ConnectionError means the store could not be reached or rejected the credentials.
// It is fatal to the session.
type ConnectionError struct {
	Target string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("error connecting to PostgreSQL database %s: %v", e.Target, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// QueryError means a statement failed. Any open transaction has already been rolled back.
type QueryError struct {
	Op         string // e.g. "creating student"
	Code       string // SQLSTATE, empty when the driver did not report one
	Condition  string // SQLSTATE condition name, e.g. "unique_violation"
	Constraint string
	Err        error
}

func (e *QueryError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("error %s: %s on %s: %v", e.Op, e.Condition, e.Constraint, e.Err)
	}
	if e.Condition != "" {
		return fmt.Sprintf("error %s: %s: %v", e.Op, e.Condition, e.Err)
	}
	return fmt.Sprintf("error %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// IsConstraintViolation reports whether the failure is an integrity constraint
// violation (SQLSTATE class 23).
func (e *QueryError) IsConstraintViolation() bool {
	return len(e.Code) == 5 && e.Code[:2] == "23"
}

func newQueryError(op string, err error) *QueryError {
	qe := &QueryError{Op: op, Err: err}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		qe.Code = string(pqErr.Code)
		qe.Condition = pqErr.Code.Name()
		qe.Constraint = pqErr.Constraint
	}
	return qe
}
