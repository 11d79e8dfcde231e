package dashboard

import "errors"

var (
	ErrNoSession         = errors.New("no valid session, redirect to login")
	ErrInvalidTransition = errors.New("invalid section status transition")
)
