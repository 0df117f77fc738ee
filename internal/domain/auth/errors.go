package auth

import "errors"

var (
	ErrInvalidToken          = errors.New("invalid or expired token")
	ErrMissingIdentity       = errors.New("token carries no employee identity")
	ErrManagerAccessRequired = errors.New("manager access required")
	ErrAdminAccessRequired   = errors.New("admin access required")
)
