package services

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyTitle      = errors.New("title is required")
	ErrInvalidPriority = errors.New("priority must be low, medium or high")
	ErrInvalidDueDate  = errors.New("due date must be formatted YYYY-MM-DD")
	ErrInvalidColor    = errors.New("color is not in the board palette")
	ErrEmptyEmail      = errors.New("email is required")
)

// QueryError reports a failed call to the database client. Its message is
// the client's own; Table names the collection for logging.
type QueryError struct {
	Table string
	Err   error
}

func (e *QueryError) Error() string { return e.Err.Error() }

func (e *QueryError) Unwrap() error { return e.Err }

func queryError(table string, err error) error {
	return &QueryError{Table: table, Err: err}
}

// RollbackError is joined to a column failure when the half-created board
// could not be removed.
type RollbackError struct {
	BoardID string
	Err     error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("failed to roll back board %s: %v", e.BoardID, e.Err)
}

func (e *RollbackError) Unwrap() error { return e.Err }
