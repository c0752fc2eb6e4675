package model

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation error")
	ErrUnknownWidgetType = errors.New("unknown widget type")
	ErrUnauthorized      = errors.New("unauthorized")
)
