package app

import "fmt"

type TimerErrorCode string

const (
	TimerErrTaskAlreadyActive TimerErrorCode = "TASK_ALREADY_ACTIVE"
	TimerErrGloballyPaused    TimerErrorCode = "GLOBALLY_PAUSED"
	TimerErrNotActiveTask     TimerErrorCode = "NOT_ACTIVE_TASK"
	TimerErrTaskAlreadyDone   TimerErrorCode = "TASK_ALREADY_DONE"
	TimerErrTaskDeleted       TimerErrorCode = "TASK_DELETED"
	TimerErrTaskNotFound      TimerErrorCode = "TASK_NOT_FOUND"
	TimerErrGlobalPauseHeld   TimerErrorCode = "GLOBAL_PAUSE_HELD"
	TimerErrNotGloballyPaused TimerErrorCode = "NOT_GLOBALLY_PAUSED"
)

// TimerError is a rejected timer action. Nothing was written when one is
// returned.
type TimerError struct {
	Code    TimerErrorCode
	Message string
}

func NewTimerError(code TimerErrorCode, format string, args ...any) *TimerError {
	return &TimerError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *TimerError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Is matches any TimerError carrying the same code.
func (e *TimerError) Is(target error) bool {
	t, ok := target.(*TimerError)
	return ok && t.Code == e.Code
}

type ValidationErrorCode string

const (
	ValidationErrEmptyEmail      ValidationErrorCode = "EMPTY_EMAIL"
	ValidationErrInvalidEmail    ValidationErrorCode = "INVALID_EMAIL"
	ValidationErrNameRequired    ValidationErrorCode = "NAME_REQUIRED"
	ValidationErrEmptyTitle      ValidationErrorCode = "EMPTY_TITLE"
	ValidationErrEmptyDesc       ValidationErrorCode = "EMPTY_DESCRIPTION"
	ValidationErrUnknownAssignee ValidationErrorCode = "UNKNOWN_ASSIGNEE"
	ValidationErrDueInPast       ValidationErrorCode = "DUE_IN_PAST"
	ValidationErrNotReopenable   ValidationErrorCode = "NOT_REOPENABLE"
)

// ValidationError is a rejected request whose input was malformed.
type ValidationError struct {
	Code    ValidationErrorCode
	Message string
}

func NewValidationError(code ValidationErrorCode, format string, args ...any) *ValidationError {
	return &ValidationError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool {
	t, ok := target.(*ValidationError)
	return ok && t.Code == e.Code
}
