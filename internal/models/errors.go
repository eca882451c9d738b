package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes carried by AppError.
const (
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeBadRequest   = "BAD_REQUEST"
	CodeStorage      = "STORAGE_ERROR"
	CodeInternal     = "INTERNAL_ERROR"
)

// Messages shared between services and handlers.
const (
	MsgInvalidCredentials  = "Invalid login or password"
	MsgAccessDenied        = "Access Denied"
	MsgOnlyAdmin           = "Only Admin access"
	MsgUserExists          = "User already exists"
	MsgInvalidPassword     = "Invalid password"
	MsgUserNotFound        = "User not found"
	MsgAdNotFound          = "Ad not found"
	MsgCommentNotFound     = "Comment not found"
	MsgInvalidRelation     = "Invalid relation ad->comment"
	MsgFileStorageError    = "File storage error"
	MsgUnsupportedFileType = "Unsupported file type"
	MsgFileTooBig          = "File too big"
	MsgInternal            = "Internal server error"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
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

func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

func NewForbiddenError(message string) *AppError {
	return &AppError{Code: CodeForbidden, Message: message}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

func NewBadRequestError(message string) *AppError {
	return &AppError{Code: CodeBadRequest, Message: message}
}

func NewStorageError(err error) *AppError {
	return &AppError{Code: CodeStorage, Message: MsgFileStorageError, Err: err}
}

func NewInternalError(err error) *AppError {
	return &AppError{Code: CodeInternal, Message: MsgInternal, Err: err}
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// StatusFor maps an error to the HTTP status it should be reported with.
func StatusFor(err error) int {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}
	switch appErr.Code {
	case CodeUnauthorized:
		return fiber.StatusUnauthorized
	case CodeForbidden:
		return fiber.StatusForbidden
	case CodeNotFound:
		return fiber.StatusNotFound
	case CodeBadRequest:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// RespondWithError writes err as an ErrorResponse. Wrapped causes never reach the client.
func RespondWithError(c *fiber.Ctx, err error) error {
	status := StatusFor(err)

	var appErr *AppError
	var fiberErr *fiber.Error
	var response ErrorResponse
	switch {
	case errors.As(err, &appErr):
		response = ErrorResponse{Code: appErr.Code, Message: appErr.Message}
	case errors.As(err, &fiberErr):
		response = ErrorResponse{Code: codeForStatus(fiberErr.Code), Message: fiberErr.Message}
	default:
		response = ErrorResponse{Code: CodeInternal, Message: MsgInternal}
	}

	return c.Status(status).JSON(response)
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusUnauthorized:
		return CodeUnauthorized
	case fiber.StatusForbidden:
		return CodeForbidden
	case fiber.StatusNotFound:
		return CodeNotFound
	case fiber.StatusInternalServerError:
		return CodeInternal
	}
	if status >= 400 && status < 500 {
		return CodeBadRequest
	}
	return CodeInternal
}
