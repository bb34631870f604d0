package apiErrors

import "fmt"

type ErrorCode string

const (
	NotFound         ErrorCode = "NOT_FOUND"
	Conflict         ErrorCode = "CONFLICT"
	ValidationFailed ErrorCode = "VALIDATION_FAILED"
	PersistFailed    ErrorCode = "PERSIST_FAILED"
	InternalError    ErrorCode = "INTERNAL_ERROR"
)

type APIError struct {
	Code    ErrorCode
	Message string
}

func (e APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}
