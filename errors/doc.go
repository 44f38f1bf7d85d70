/*
Package errors provides semantic error types for the docrepo library.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrNotFound                = errors.New("document not found")
	    ErrAlreadyExists           = errors.New("document already exists")
	    ErrInvalidArgument         = errors.New("invalid argument")
	    ErrValidation              = errors.New("validation failed")
	    ErrUnregisteredConstructor = errors.New("unregistered constructor")
	    ErrConditionFailed         = errors.New("condition check failed")
	    ErrTransactionFailed       = errors.New("transaction failed")
	)

Usage:

	// Check error type
	activity, err := repo.FindByID(ctx, "123", nil)
	if err != nil {
	    if errors.IsInvalidArgument(err) {
	        // Caller supplied a bad request; never retried
	        return nil, err
	    }
	    return nil, err
	}

	// Create typed errors
	err := errors.NewInvalidArgumentError("id", "id is required")
	err := errors.NewValidationError("email", "invalid format")
	err := errors.NewUnregisteredConstructorError("CallActivity")

Every public repository operation resolves with a typed result or fails
with one of the error kinds above; storage-layer faults are never
silently swallowed. The error types support wrapping, making them
compatible with Go's standard error handling patterns.
*/
package errors
