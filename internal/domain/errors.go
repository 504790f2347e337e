package domain

import "errors"

var (
	ErrTaskNotFound      = errors.New("task not found")
	ErrCycleNotFound     = errors.New("cycle not found")
	ErrEmptyTranscript   = errors.New("empty transcript")
	ErrBusy              = errors.New("an interpretation is already in progress")
	ErrMalformedOutput   = errors.New("malformed backend output")
	ErrAttemptsExhausted = errors.New("attempts exhausted")
)
