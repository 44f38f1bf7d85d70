/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrNotFound is returned by stores when no document matches a key or predicate
	ErrNotFound = errors.New("document not found")

	// ErrAlreadyExists is returned by stores when an insert collides with a stored document
	ErrAlreadyExists = errors.New("document already exists")

	// ErrInvalidArgument is returned when a caller supplied a structurally invalid request
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrValidation is returned when the backing store rejected the data itself
	ErrValidation = errors.New("validation failed")

	// ErrUnregisteredConstructor is returned when a stored discriminator has no registry entry
	ErrUnregisteredConstructor = errors.New("unregistered constructor")

	// ErrConditionFailed is returned when a conditional update fails
	ErrConditionFailed = errors.New("condition check failed")

	// ErrTransactionFailed is returned when a transaction cannot commit or abort
	ErrTransactionFailed = errors.New("transaction failed")
)

// NotFoundError represents an error when a document is not found
type NotFoundError struct {
	Type string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %q not found", e.Type, e.Key)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// AlreadyExistsError represents an error when a document already exists
type AlreadyExistsError struct {
	Type string
	Key  string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("%s with id %q already exists", e.Type, e.Key)
}

func (e *AlreadyExistsError) Is(target error) bool {
	return target == ErrAlreadyExists
}

// InvalidArgumentError represents a structurally invalid request,
// detected before any storage call is made.
type InvalidArgumentError struct {
	Field   string
	Message string
}

func (e *InvalidArgumentError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid argument %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid argument: %s", e.Message)
}

func (e *InvalidArgumentError) Is(target error) bool {
	return target == ErrInvalidArgument
}

// ValidationError represents data the backing store rejected
// (schema validation, uniqueness constraint). Cause, when set,
// carries the original storage-layer error.
type ValidationError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// UnregisteredConstructorError represents a data-integrity fault: a stored
// document carries a discriminator the running registry cannot interpret.
type UnregisteredConstructorError struct {
	TypeName string
}

func (e *UnregisteredConstructorError) Error() string {
	return fmt.Sprintf("no constructor registered for type %q", e.TypeName)
}

func (e *UnregisteredConstructorError) Is(target error) bool {
	return target == ErrUnregisteredConstructor
}

// ConditionFailedError represents a failed conditional operation
type ConditionFailedError struct {
	Operation string
	Condition string
}

func (e *ConditionFailedError) Error() string {
	return fmt.Sprintf("condition check failed for %s operation: %s", e.Operation, e.Condition)
}

func (e *ConditionFailedError) Is(target error) bool {
	return target == ErrConditionFailed
}

// TransactionError represents a failure of the transaction machinery itself.
// Errors raised inside a unit of work propagate unchanged; TransactionError
// only wraps commit and abort faults.
type TransactionError struct {
	Stage string
	Cause error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %v", e.Stage, e.Cause)
}

func (e *TransactionError) Is(target error) bool {
	return target == ErrTransactionFailed
}

func (e *TransactionError) Unwrap() error {
	return e.Cause
}

// Helper functions for creating errors

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(entityType, key string) error {
	return &NotFoundError{Type: entityType, Key: key}
}

// NewAlreadyExistsError creates a new AlreadyExistsError
func NewAlreadyExistsError(entityType, key string) error {
	return &AlreadyExistsError{Type: entityType, Key: key}
}

// NewInvalidArgumentError creates a new InvalidArgumentError
func NewInvalidArgumentError(field, message string) error {
	return &InvalidArgumentError{Field: field, Message: message}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewValidationErrorCause creates a ValidationError wrapping the storage-layer cause
func NewValidationErrorCause(message string, cause error) error {
	return &ValidationError{Message: message, Cause: cause}
}

// NewUnregisteredConstructorError creates a new UnregisteredConstructorError
func NewUnregisteredConstructorError(typeName string) error {
	return &UnregisteredConstructorError{TypeName: typeName}
}

// NewConditionFailedError creates a new ConditionFailedError
func NewConditionFailedError(operation, condition string) error {
	return &ConditionFailedError{Operation: operation, Condition: condition}
}

// NewTransactionError creates a new TransactionError
func NewTransactionError(stage string, cause error) error {
	return &TransactionError{Stage: stage, Cause: cause}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInvalidArgument checks if an error is an invalid argument error
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidArgument)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnregisteredConstructor checks if an error is an unregistered constructor error
func IsUnregisteredConstructor(err error) bool {
	return errors.Is(err, ErrUnregisteredConstructor)
}

// IsConditionFailed checks if an error is a condition failed error
func IsConditionFailed(err error) bool {
	return errors.Is(err, ErrConditionFailed)
}

// IsTransactionFailed checks if an error is a transaction failure
func IsTransactionFailed(err error) bool {
	return errors.Is(err, ErrTransactionFailed)
}
