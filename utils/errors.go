package utils

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

// ValidationError -> input yang tidak valid (unknown product, malformed body, dll)
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError -> entity yang direferensikan tidak ada
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

// ConflictError -> lock timeout, table occupied, no open shift, duplicate shift
type ConflictError struct {
	Resource string
	Message  string
}

func (e *ConflictError) Error() string {
	if e.Resource != "" {
		return fmt.Sprintf("%s: %s", e.Resource, e.Message)
	}
	return e.Message
}

func NewConflictError(resource, format string, args ...interface{}) *ConflictError {
	return &ConflictError{Resource: resource, Message: fmt.Sprintf(format, args...)}
}

// InsufficientStockError membawa detail produk/bahan supaya kasir tahu apa yang kurang
type InsufficientStockError struct {
	Product    string
	Ingredient string
	Required   decimal.Decimal
	Available  decimal.Decimal
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for product %q: ingredient %q requires %s, only %s available",
		e.Product, e.Ingredient, e.Required.String(), e.Available.String())
}

// InvalidStateTransitionError menyebutkan kedua state supaya client bisa memutuskan retry
type InvalidStateTransitionError struct {
	From string
	To   string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid state transition from %q to %q", e.From, e.To)
}

// DeadlockError -> dilempar terpisah supaya caller bisa memilih retry
type DeadlockError struct {
	Err error
}

func (e *DeadlockError) Error() string {
	return fmt.Sprintf("deadlock detected: %v", e.Err)
}

func (e *DeadlockError) Unwrap() error { return e.Err }

// DuplicateKeyError -> unique index collision (mis. order number), retryable
type DuplicateKeyError struct {
	Err error
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate key: %v", e.Err)
}

func (e *DuplicateKeyError) Unwrap() error { return e.Err }

// IsRetryable -> true untuk error yang boleh dicoba ulang secara transparan
func IsRetryable(err error) bool {
	var dl *DeadlockError
	var dk *DuplicateKeyError
	return errors.As(err, &dl) || errors.As(err, &dk)
}

// HTTPStatus memetakan taxonomy error ke kode HTTP
func HTTPStatus(err error) int {
	var ve *ValidationError
	var nf *NotFoundError
	var ce *ConflictError
	var is *InsufficientStockError
	var st *InvalidStateTransitionError
	var dl *DeadlockError

	switch {
	case errors.As(err, &ve), errors.As(err, &is):
		return http.StatusBadRequest
	case errors.As(err, &nf):
		return http.StatusNotFound
	case errors.As(err, &ce), errors.As(err, &st), errors.As(err, &dl):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
