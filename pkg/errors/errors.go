package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an application error. Every error the registry surfaces
// carries exactly one kind; callers branch on it to decide whether the
// operation is retryable and how to report it.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindReferentialIntegrity
	KindDuplicateIdentifier
	KindNotFound
	KindInvalidTransition
	KindDeliveryFailure
	KindInternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindReferentialIntegrity:
		return "referential_integrity_violation"
	case KindDuplicateIdentifier:
		return "duplicate_identifier"
	case KindNotFound:
		return "not_found"
	case KindInvalidTransition:
		return "invalid_transition"
	case KindDeliveryFailure:
		return "delivery_failure"
	default:
		return "internal_error"
	}
}

// AppError represents an application error
type AppError struct {
	Kind    Kind   `json:"kind"`
	Entity  string `json:"entity,omitempty"`
	Field   string `json:"field,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Retryable reports whether the caller can retry the operation unchanged.
func (e *AppError) Retryable() bool {
	return e.Kind == KindDuplicateIdentifier || e.Kind == KindDeliveryFailure
}

// Error constructors
func NewValidation(entity, field string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Entity:  entity,
		Field:   field,
		Message: fmt.Sprintf("%s: %s is required or malformed", entity, field),
	}
}

// NewValidationMessage is for validation failures that are not about one
// field, e.g. a request body that does not bind.
func NewValidationMessage(entity, message string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Entity:  entity,
		Message: message,
	}
}

func NewReferentialIntegrity(entity, field string, err error) *AppError {
	return &AppError{
		Kind:    KindReferentialIntegrity,
		Entity:  entity,
		Field:   field,
		Message: fmt.Sprintf("%s: %s references a row that does not exist", entity, field),
		Err:     err,
	}
}

func NewDuplicateIdentifier(entity, code string, err error) *AppError {
	return &AppError{
		Kind:    KindDuplicateIdentifier,
		Entity:  entity,
		Code:    code,
		Message: fmt.Sprintf("%s: identifier %s already exists, retry", entity, code),
		Err:     err,
	}
}

func NewNotFound(entity, code string) *AppError {
	return &AppError{
		Kind:    KindNotFound,
		Entity:  entity,
		Code:    code,
		Message: fmt.Sprintf("%s %s not found", entity, code),
	}
}

func NewInvalidTransition(code, from, to string) *AppError {
	return &AppError{
		Kind:    KindInvalidTransition,
		Entity:  "blood_sample",
		Code:    code,
		Message: fmt.Sprintf("blood_sample %s: cannot move from %s to %s", code, from, to),
	}
}

func NewDeliveryFailure(code string, err error) *AppError {
	return &AppError{
		Kind:    KindDeliveryFailure,
		Entity:  "blood_sample",
		Code:    code,
		Message: fmt.Sprintf("blood_sample %s: result delivery failed, sample left as tested", code),
		Err:     err,
	}
}

func NewInternal(err error) *AppError {
	return &AppError{
		Kind:    KindInternal,
		Message: "internal error",
		Err:     err,
	}
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}
