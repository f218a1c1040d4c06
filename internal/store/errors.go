package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// SchemaError reports a relation that does not match its declared model.
type SchemaError struct {
	Relation string
	Missing  []string // declared columns the stored relation lacks
	NotFound bool
	Err      error
}

func (e *SchemaError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("relation %s does not exist", e.Relation)
	}
	return fmt.Sprintf("relation %s is incompatible: missing columns %s", e.Relation, strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// ConstraintViolation reports a row rejected by a key or uniqueness constraint.
type ConstraintViolation struct {
	Relation string
	Err      error
}

func (e *ConstraintViolation) Error() string {
	return fmt.Sprintf("constraint violation on %s: %v", e.Relation, e.Err)
}

func (e *ConstraintViolation) Unwrap() error {
	return e.Err
}

func isConstraintError(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 23: integrity constraint violation.
		return pqErr.Code.Class() == "23"
	}
	return strings.Contains(strings.ToLower(err.Error()), "constraint failed")
}
