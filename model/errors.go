package model

import "fmt"

type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"
	ErrBadSignature      ErrorCode = "BAD_SIGNATURE"
	ErrStaleRequest      ErrorCode = "STALE_REQUEST"
	ErrUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrNotFound          ErrorCode = "NOT_FOUND"
	ErrQuorumNotMet      ErrorCode = "QUORUM_NOT_MET"
	ErrInvalidQuorum     ErrorCode = "INVALID_QUORUM"
	ErrQuorumUnreachable ErrorCode = "QUORUM_UNREACHABLE"
	ErrNothingToRemove   ErrorCode = "NOTHING_TO_REMOVE"
	ErrInvalidCall       ErrorCode = "INVALID_CALL"
	ErrInternal          ErrorCode = "INTERNAL"
)

// CodedError is a stable error with a machine-readable code and a human message.
type CodedError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e *CodedError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewError(code ErrorCode, message string) *CodedError {
	return &CodedError{Code: code, Message: message}
}
