package errors

import "errors"

// Client errors.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrValidation         = errors.New("request rejected by validation")
	ErrNotDirectory       = errors.New("root is not a directory")
	ErrNoRoots            = errors.New("no sync roots configured")
)

// Server/transport errors.
var (
	ErrAPIRequest  = errors.New("API request failed")
	ErrAPIResponse = errors.New("unexpected API response")
)
