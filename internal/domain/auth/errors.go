package auth

import "errors"

var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrMFARequired         = errors.New("mfa code required")
	ErrMFAInvalid          = errors.New("invalid mfa code")
	ErrIdentityExists      = errors.New("identity with this email already exists")
	ErrRoleNotFound        = errors.New("role not found")
	ErrInvalidRegistration = errors.New("invalid registration payload")
)
