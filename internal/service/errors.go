package service

import "errors"

var (
	// ErrNotFound covers accounts (or other entities) that do not exist
	// or are not owned by the requesting user.
	ErrNotFound = errors.New("not found")

	// ErrNoValidAccounts aborts a batch before any submission when none
	// of the requested account ids belong to the user.
	ErrNoValidAccounts = errors.New("no valid accounts found")

	// ErrNotAuthenticated marks an account with no usable access token.
	ErrNotAuthenticated = errors.New("account not logged in")

	// ErrExchangeFailed wraps a broker rejection of the token exchange.
	ErrExchangeFailed = errors.New("token exchange failed")

	// ErrEmailTaken is returned on registration with a known email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned on login with a bad email/password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUnknownIndex rejects order sizing for an index with no known
	// lot size (unless legacy sizing is explicitly enabled).
	ErrUnknownIndex = errors.New("unknown index: no lot size configured")

	// ErrInvalidLots rejects lot counts outside 1..100.
	ErrInvalidLots = errors.New("lots must be between 1 and 100")

	// ErrInvalidOptionType rejects option types other than CE/PE.
	ErrInvalidOptionType = errors.New("option type must be CE or PE")
)
