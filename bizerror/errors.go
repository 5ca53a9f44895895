package bizerror

import (
	"errors"
	"net/http"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("record not found")
)

type BizError interface {
	Respond() *BizErrorDetail
}

type BizErrorDetail struct {
	Status  int
	Code    string
	Message string

	Data  interface{}
	Cause error
}

// ErrBadParam is returned when the input is malformed or misses a required field.
type ErrBadParam struct {
	Cause error
}

func (e *ErrBadParam) Unwrap() error {
	return e.Cause
}
func (e *ErrBadParam) Error() string {
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return "common.bad_param"
}
func (e *ErrBadParam) Respond() *BizErrorDetail {
	message := "common.bad_param"
	if e.Cause != nil {
		message = e.Cause.Error()
	}
	return &BizErrorDetail{Status: http.StatusBadRequest, Code: "common.bad_param", Message: message, Data: nil}
}

// ErrInvalidState is returned when an operation is not allowed for the current status of a record.
type ErrInvalidState struct {
	Message string
}

func (e *ErrInvalidState) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "invalid state"
}
func (e *ErrInvalidState) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusConflict, Code: "common.invalid_state", Message: e.Error()}
}

// ErrConflict is returned on duplicated resources and lost concurrent updates.
type ErrConflict struct {
	Message string
}

func (e *ErrConflict) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "conflict"
}
func (e *ErrConflict) Respond() *BizErrorDetail {
	return &BizErrorDetail{Status: http.StatusConflict, Code: "common.conflict", Message: e.Error()}
}

func BadParam(message string) error {
	return &ErrBadParam{Cause: errors.New(message)}
}

func InvalidState(message string) error {
	return &ErrInvalidState{Message: message}
}

func Conflict(message string) error {
	return &ErrConflict{Message: message}
}

var ErrConcurrentModification = Conflict("concurrent modification")
