package board

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidOrder  = errors.New("invalid order")
	ErrOrderNotFound = errors.New("order not found")
	ErrComparison    = errors.New("orders cannot be compared")
)

// ValidationError names the first registration rule an order failed.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidOrder, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidOrder }

// ComparisonError is returned when an order without a side reaches the
// summary ordering. Registration rejects such orders, so seeing one means
// the board's invariants were bypassed.
type ComparisonError struct {
	Left, Right Order
}

func (e *ComparisonError) Error() string {
	return fmt.Sprintf("%s: both orders need a side (left=%s, right=%s)", ErrComparison, e.Left.Side, e.Right.Side)
}

func (e *ComparisonError) Unwrap() error { return ErrComparison }
