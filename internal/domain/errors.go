package domain

import (
	"errors"
	"fmt"
)

// ErrRecognitionUnsupported means no speech recognition engine can be used at all.
var ErrRecognitionUnsupported = errors.New("speech recognition is not supported")

// RecognitionError ends the current listening session.
type RecognitionError struct {
	Code   RecognitionErrorCode
	Detail string
	Err    error
}

func (e *RecognitionError) Error() string {
	msg := "recognition error: " + string(e.Code)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RecognitionError) Unwrap() error {
	return e.Err
}

// ModelRequestError is returned by chat model adapters on transport or model failure.
type ModelRequestError struct {
	Op  string
	Err error
}

func (e *ModelRequestError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("model request failed: %v", e.Err)
	}
	return fmt.Sprintf("model request failed (%s): %v", e.Op, e.Err)
}

func (e *ModelRequestError) Unwrap() error {
	return e.Err
}

// NewModelRequestError wraps err unless it already is a ModelRequestError.
func NewModelRequestError(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *ModelRequestError
	if errors.As(err, &existing) {
		return err
	}
	return &ModelRequestError{Op: op, Err: err}
}

// RecognitionErrorEvent converts err into an error event. Errors that are not
// a *RecognitionError become network errors.
func RecognitionErrorEvent(err error) RecognitionEvent {
	var recErr *RecognitionError
	if errors.As(err, &recErr) {
		detail := recErr.Detail
		if detail == "" && recErr.Err != nil {
			detail = recErr.Err.Error()
		}
		return RecognitionEvent{Kind: RecognitionEventError, Code: recErr.Code, Detail: detail}
	}
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return RecognitionEvent{Kind: RecognitionEventError, Code: RecognitionErrorNetwork, Detail: detail}
}
