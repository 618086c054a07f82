package main

import (
	"errors"

	"github.com/wgomg/precis/internal/ingest"
	"github.com/wgomg/precis/internal/processor"
)

const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Invalid configuration or a collaborator that is not configured
	ExitDataError   = 3 // The document has no text or cannot be summarized
)

type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func withExitCode(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// dataError turns pipeline failures into their user-facing message and the
// data error exit code.
func dataError(err error) error {
	switch {
	case errors.Is(err, processor.ErrEmptyInput),
		errors.Is(err, processor.ErrSegmentationFailure),
		errors.Is(err, processor.ErrDegenerateVocabulary):
		return withExitCode(ExitDataError, errors.New(processor.UserMessage(err)))
	case errors.Is(err, ingest.ErrNoText):
		return withExitCode(ExitDataError, errors.New(processor.MessageNoText))
	case errors.Is(err, ingest.ErrUnsupportedType):
		return withExitCode(ExitDataError, err)
	}
	return err
}
