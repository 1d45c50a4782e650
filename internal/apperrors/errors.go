package apperrors

import (
	"errors"
	"fmt"
)

// Error kinds. Every concrete error below wraps exactly one kind so
// callers can branch on errors.Is(err, ErrConflict) without knowing the
// concrete condition, or on the concrete sentinel when they need it.
var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrValidation   = errors.New("validation failed")
)

// Uniqueness conflicts, one per field so the API layer can render a
// precise message. Checked in this order: email, username, license
// number, public key.
var (
	ErrEmailExists         = fmt.Errorf("email already exists: %w", ErrConflict)
	ErrUsernameExists      = fmt.Errorf("username already exists: %w", ErrConflict)
	ErrLicenseNumberExists = fmt.Errorf("license number already exists: %w", ErrConflict)
	ErrPublicKeyExists     = fmt.Errorf("public key already exists: %w", ErrConflict)
)

// ErrPrivateKeyExists is reported only by the key store; the uniqueness
// pre-checks never fingerprint private material.
var ErrPrivateKeyExists = fmt.Errorf("private key already exists: %w", ErrConflict)

// Lifecycle guard violations.
var (
	ErrAlreadyActive   = fmt.Errorf("staff member is already active: %w", ErrInvalidState)
	ErrAlreadyInactive = fmt.Errorf("staff member is already inactive: %w", ErrInvalidState)
)

// ErrInvalidCredentials is deliberately outside the five kinds above;
// the API layer maps it to 401 and never says which part was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// NotFoundError carries the entity kind and identifier so the message
// can be rendered verbatim as "<Kind> not found with id: <id>".
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound builds a NotFoundError for the given entity kind and id.
func NewNotFound(kind string, id fmt.Stringer) *NotFoundError {
	return &NotFoundError{Kind: kind, ID: id.String()}
}

// ForbiddenError carries the acting user and the reason the policy
// rejected the operation.
type ForbiddenError struct {
	ActorID string
	Reason  string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("user %s %s", e.ActorID, e.Reason)
}

func (e *ForbiddenError) Unwrap() error { return ErrForbidden }

// NewForbidden builds a ForbiddenError with a human-readable reason.
func NewForbidden(actorID fmt.Stringer, reason string) *ForbiddenError {
	return &ForbiddenError{ActorID: actorID.String(), Reason: reason}
}

// ValidationError wraps a field-level input problem caught before any
// business rule runs.
type ValidationError struct {
	Field  string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Detail)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidation builds a ValidationError for a single field.
func NewValidation(field, detail string) *ValidationError {
	return &ValidationError{Field: field, Detail: detail}
}
