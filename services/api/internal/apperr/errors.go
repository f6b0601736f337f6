// Package apperr holds the error kinds the api surfaces. Callers match them
// with errors.Is / errors.As; handlers turn them into status codes.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotEnrolled  = errors.New("second factor not enrolled")
	ErrVerification = errors.New("second factor verification failed")
	ErrUpstream     = errors.New("upstream error")
)

// Stage names one write of the order placement unit.
type Stage string

const (
	StageHeader Stage = "header"
	StageItems  Stage = "items"
	StageCart   Stage = "cart"
	StageEvent  Stage = "event"
	StageCommit Stage = "commit"
)

// StageError reports which write of an order placement failed.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("order stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func NewStageError(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}
