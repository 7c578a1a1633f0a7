package domain

import "errors"

var (
	ErrNotFound           = errors.New("property not found")
	ErrImageNotFound      = errors.New("image not found")
	ErrValidation         = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrStorage            = errors.New("storage unavailable")
)
