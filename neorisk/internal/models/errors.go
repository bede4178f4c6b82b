package models

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrNoModelsSelected = errors.New("at least one model must be selected")
)
