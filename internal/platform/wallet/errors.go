package wallet

import "errors"

var (
	// Address validation errors
	ErrMissingAddress  = errors.New("wallet address is required")
	ErrInvalidAddress  = errors.New("invalid EVM address format (must be 0x followed by 40 hex characters)")
	ErrInvalidChecksum = errors.New("invalid EVM address checksum")

	// Signature errors
	ErrInvalidSignature = errors.New("invalid wallet signature")
	ErrSignerMismatch   = errors.New("signature was not produced by the claimed address")
)
