package service

import (
	"errors"
	"fmt"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrConflict          = errors.New("conflict")
)

// LineError ties a failure to one cart line. Ref is the product name when
// known, otherwise the id or name the line was submitted with.
type LineError struct {
	Line      int // 1-based
	Ref       string
	Requested int
	Available int
	Err       error
}

func (e *LineError) Error() string {
	switch {
	case errors.Is(e.Err, ErrProductNotFound):
		return fmt.Sprintf("product not found: %s (line %d)", e.Ref, e.Line)
	case errors.Is(e.Err, ErrInsufficientStock):
		return fmt.Sprintf("not enough stock for %s: requested %d, available %d (line %d)", e.Ref, e.Requested, e.Available, e.Line)
	}
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Ref, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
