package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Typed errors below match them via errors.Is so
// callers can classify failures without knowing the concrete type.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict")
	ErrDuplicateName     = errors.New("duplicate name")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrCompletionBlocked = errors.New("completion blocked")
	ErrInvalidTransition = errors.New("invalid transition")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// ConflictError covers terminal-state violations and lost races.
// The caller may retry after reloading.
type ConflictError struct {
	Entity string
	ID     string
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict on %s %s: %s", e.Entity, e.ID, e.Reason)
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

type DuplicateNameError struct {
	Name    string
	Version int
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("bom %q version %d already exists", e.Name, e.Version)
}

func (e *DuplicateNameError) Is(target error) bool {
	return target == ErrDuplicateName || target == ErrConflict
}

type InsufficientStockError struct {
	ComponentID   string
	ComponentName string
	Required      int
	Available     int
}

func (e *InsufficientStockError) Error() string {
	name := e.ComponentName
	if name == "" {
		name = e.ComponentID
	}
	return fmt.Sprintf("insufficient stock for %s: required %d, available %d", name, e.Required, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// Shortfall is how many units are missing.
func (e *InsufficientStockError) Shortfall() int {
	return e.Required - e.Available
}

// CompletionBlockedError reports every shortage found while debiting an
// order's bill of materials. Nothing was debited.
type CompletionBlockedError struct {
	OrderID   string
	Shortages []*InsufficientStockError
}

func (e *CompletionBlockedError) Error() string {
	parts := make([]string, len(e.Shortages))
	for i, s := range e.Shortages {
		parts[i] = s.Error()
	}
	return fmt.Sprintf("completion of order %s blocked: %s", e.OrderID, strings.Join(parts, "; "))
}

func (e *CompletionBlockedError) Is(target error) bool { return target == ErrCompletionBlocked }

func (e *CompletionBlockedError) Unwrap() []error {
	errs := make([]error, len(e.Shortages))
	for i, s := range e.Shortages {
		errs[i] = s
	}
	return errs
}

type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s: cannot transition from %s to %s", e.Entity, e.ID, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }
