package service

import "errors"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username or email already registered")
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrUnsupportedMedia   = errors.New("unsupported media type")
	ErrFileTooLarge       = errors.New("file too large")
	ErrSessionExpired     = errors.New("session expired")
	ErrMailNotConfigured  = errors.New("mail delivery not configured")
)
