package models

import "errors"

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrNoActiveBoss = errors.New("no active boss")
	ErrPersistence  = errors.New("persistence failure")
)
