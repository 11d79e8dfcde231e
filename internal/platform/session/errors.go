package session

import "errors"

var (
	// Session state errors
	ErrNoSession    = errors.New("no active session")
	ErrInvalidToken = errors.New("invalid or expired session token")

	// Login errors
	ErrUnsupportedMethod      = errors.New("unsupported login method")
	ErrProviderNotConfigured  = errors.New("login provider is not configured")
	ErrMissingCredentials     = errors.New("missing login credentials")
	ErrInvalidCredentials     = errors.New("invalid login credentials")
	ErrChallengeNotFound      = errors.New("login challenge not found or expired")
	ErrNoLinkedWallet         = errors.New("identity has no linked wallet")
	ErrWalletNotLinked        = errors.New("wallet is not linked to this identity")
	ErrDuplicateAuthenticator = errors.New("authenticator already registered for method")

	// Account log errors
	ErrAccountNotFound = errors.New("account not found")
)
