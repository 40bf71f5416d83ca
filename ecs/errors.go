package ecs

import (
	"fmt"
)

// ==============================================
// Error Framework
// ==============================================

// The container itself recovers every error locally: public facade operations
// signal failure through sentinel values, nil handles, or empty views, never
// through a returned error. The typed error below backs the places where
// errors genuinely flow outward, such as the Lua bridge and the config
// loader, and gives those callers a stable code to switch on.

// ECSError is an error originating in the container or one of its front
// ends.
type ECSError struct {
	Code    string
	Message string
	Entity  EntityID
}

// Error implements the error interface.
func (e *ECSError) Error() string {
	if e.Entity >= 0 {
		return fmt.Sprintf("[%s] %s (entity %d)", e.Code, e.Message, e.Entity)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Common error codes.
const (
	ErrCodeEntityLimit        = "ENTITY_LIMIT_REACHED"
	ErrCodeInactiveEntity     = "ENTITY_INACTIVE"
	ErrCodeCapacity           = "CAPACITY_EXCEEDED"
	ErrCodeDuplicateComponent = "COMPONENT_EXISTS"
	ErrCodeUnknownType        = "UNKNOWN_COMPONENT_TYPE"
	ErrCodeUnknownQuery       = "UNKNOWN_QUERY"
	ErrCodeSignatureLimit     = "SIGNATURE_LIMIT_REACHED"
	ErrCodeRegistrationLocked = "REGISTRATION_LOCKED"
	ErrCodeScript             = "SCRIPT_ERROR"
	ErrCodeInvalidConfig      = "INVALID_CONFIG"
)

// NewECSError creates an error carrying a code and a message.
func NewECSError(code, message string) *ECSError {
	return &ECSError{Code: code, Message: message, Entity: InvalidEntity}
}

// NewEntityError creates an error tied to a specific entity.
func NewEntityError(code, message string, id EntityID) *ECSError {
	return &ECSError{Code: code, Message: message, Entity: id}
}

// WrapError wraps err with a code and context message.
func WrapError(err error, code, message string) *ECSError {
	return &ECSError{
		Code:    code,
		Message: fmt.Sprintf("%s: %v", message, err),
		Entity:  InvalidEntity,
	}
}

// CodeOf returns the code of an ECSError, or the empty string for any other
// error.
func CodeOf(err error) string {
	if ecsErr, ok := err.(*ECSError); ok {
		return ecsErr.Code
	}
	return ""
}
