package domain

import "github.com/pkg/errors"

var (
	ErrNotFound  = errors.New("record not found")
	ErrForbidden = errors.New("operation not allowed")
)
