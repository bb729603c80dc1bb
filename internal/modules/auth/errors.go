package auth

import "errors"

var (
	ErrInvalidCredentials    = errors.New("no active account found with the given credentials")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrInvalidToken          = errors.New("token is invalid or expired")
	ErrIDPhotoRequired       = errors.New("identity document photo is required")
)
