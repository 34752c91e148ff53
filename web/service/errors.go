package service

import "errors"

// Error taxonomy shared by the services. Controllers translate these to
// HTTP statuses; everything else surfaces as a store failure (500).
var (
	// ErrInvalidCredentials covers both unknown username and wrong
	// password so login failures never reveal whether a user exists.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionNotFound means the token is absent from the ledger.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionExpired means the token exists but its expiry passed.
	ErrSessionExpired = errors.New("session expired")

	// ErrAlreadyComplete rejects a second setup completion attempt.
	ErrAlreadyComplete = errors.New("setup is already complete")

	// ErrValidation rejects malformed input to setup or user creation.
	ErrValidation = errors.New("validation failed")

	// ErrUserExists rejects duplicate usernames or emails.
	ErrUserExists = errors.New("username or email already exists")

	// ErrUserNotFound means no user row matches the requested id.
	ErrUserNotFound = errors.New("user not found")

	// ErrLastAdmin refuses deleting the final administrator.
	ErrLastAdmin = errors.New("cannot delete the last admin user")
)
