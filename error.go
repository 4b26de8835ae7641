// Copyright (C) 2019-2025, Lux Industries Inc All rights reserved.
// See the file LICENSE for licensing terms.

package fhevm

import (
	"errors"
	"fmt"
)

// ErrorCode classifies failures surfaced by the SDK.
type ErrorCode int32

const (
	CodeNotInitialized ErrorCode = iota + 1
	CodeValidation
	CodeUnsupportedType
	CodeGatewayNotImplemented
	CodeNetworkOrSignature
	CodeDecryptionFailed
	CodeCacheUnavailable
)

func (c ErrorCode) String() string {
	switch c {
	case CodeNotInitialized:
		return "not initialized"
	case CodeValidation:
		return "validation"
	case CodeUnsupportedType:
		return "unsupported type"
	case CodeGatewayNotImplemented:
		return "gateway not implemented"
	case CodeNetworkOrSignature:
		return "network or signature failure"
	case CodeDecryptionFailed:
		return "decryption failed"
	case CodeCacheUnavailable:
		return "cache unavailable"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is. Every *Error matches the sentinel of its code.
var (
	ErrNotInitialized        = &Error{Code: CodeNotInitialized, Message: "FHEVM instance not initialized"}
	ErrValidation            = &Error{Code: CodeValidation, Message: "validation failed"}
	ErrUnsupportedType       = &Error{Code: CodeUnsupportedType, Message: "unsupported encryption type"}
	ErrGatewayNotImplemented = &Error{Code: CodeGatewayNotImplemented, Message: "gateway not implemented"}
	ErrNetworkOrSignature    = &Error{Code: CodeNetworkOrSignature, Message: "network or signature failure"}
	ErrDecryptionFailed      = &Error{Code: CodeDecryptionFailed, Message: "decryption failed"}
	ErrCacheUnavailable      = &Error{Code: CodeCacheUnavailable, Message: "cache unavailable"}
)

// Error represents an SDK error
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

func newError(code ErrorCode, err error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

func validationError(format string, args ...any) *Error {
	return newError(CodeValidation, nil, format, args...)
}

// IsValidationError reports whether err was raised by input validation.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
