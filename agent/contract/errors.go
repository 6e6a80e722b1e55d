package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrToolUnavailable = errors.New("tool is unavailable")
	ErrValidation      = errors.New("validation failed")
)
