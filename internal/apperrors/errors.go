package apperrors

import "errors"

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("operation conflicts with resource state")

// ErrPeriodClosed indicates that the target date falls inside a closed financial period.
// Shared here because both the ledger and the depreciation services surface it.
var ErrPeriodClosed = errors.New("financial period is closed")

// ErrInternal indicates an unexpected internal failure that should not be shown to callers verbatim.
var ErrInternal = errors.New("internal error")
