package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid login id or password")
	ErrInvalidRole        = errors.New("invalid role")
)
