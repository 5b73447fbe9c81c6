package services

import "errors"

// Sentinel errors the API boundary maps onto HTTP statuses.
var (
	// ErrEmailTaken reports a registration attempt with an email that
	// already has an account.
	ErrEmailTaken = errors.New("email is already registered")

	// ErrInvalidCredentials covers both unknown email and wrong
	// password. The two are deliberately indistinguishable so login
	// responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserNotFound reports a user that vanished between token
	// verification and lookup.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidPlanContent rejects save payloads that are not a
	// structured plan document.
	ErrInvalidPlanContent = errors.New("invalid plan content")

	// ErrInvalidIndex rejects a plan index outside the user's current
	// saved-plan range.
	ErrInvalidIndex = errors.New("invalid plan index")
)
