package receipt

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidReference  = errors.New("receipt: invalid reference")
	ErrReferenceNotFound = errors.New("receipt: reference not found")
	ErrDuplicateReceipt  = errors.New("receipt: duplicate receipt for order form")
	ErrInvalidPrice      = errors.New("receipt: invalid input price")
	ErrInvalidQuantity   = errors.New("receipt: invalid quantity")
	ErrPersistence       = errors.New("receipt: persistence failed")
	ErrBatchCreation     = errors.New("receipt: batch creation failed")
	ErrInvalidDateFilter = errors.New("receipt: invalid date filter")
	ErrNotFound          = errors.New("receipt: not found")
)

// FieldError ties a failure to the request field that caused it.
type FieldError struct {
	Err   error
	Field string
	Value string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%v: %s=%q", e.Err, e.Field, e.Value)
}

func (e *FieldError) Unwrap() error { return e.Err }

// MissingError lists referenced entities that do not exist.
type MissingError struct {
	Kind string
	IDs  []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrReferenceNotFound, e.Kind, strings.Join(e.IDs, ", "))
}

func (e *MissingError) Unwrap() error { return ErrReferenceNotFound }

// BatchError names the line whose batch merge failed.
type BatchError struct {
	Index       int
	ProductID   string
	BatchNumber string
	Err         error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%v: line %d product %s batch %s: %v", ErrBatchCreation, e.Index, e.ProductID, e.BatchNumber, e.Err)
}

func (e *BatchError) Unwrap() []error { return []error{ErrBatchCreation, e.Err} }
