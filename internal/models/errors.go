package models

import "errors"

var (
	ErrUnknownDomain  = errors.New("unknown domain")
	ErrUnknownStage   = errors.New("unknown stage")
	ErrUnknownOutcome = errors.New("unknown outcome")
)
