package domain

import "errors"

var (
	// ErrValidation is returned when a required input is missing or malformed.
	ErrValidation = errors.New("validation failed")
	// ErrUserAlreadyExists is returned when trying to create a user with an existing username.
	ErrUserAlreadyExists = errors.New("user already exists")
	// ErrUserNotFound is returned when looking up a non-existent user.
	ErrUserNotFound = errors.New("user not found")
	// ErrInvalidCredentials is returned when the username/password combination is incorrect.
	// It deliberately does not distinguish an unknown username from a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRateLimited is returned when a login attempt is rejected by the throttle.
	ErrRateLimited = errors.New("too many login attempts")
	// ErrNoSession is returned when a request carries no valid session.
	ErrNoSession = errors.New("no valid session")
	// ErrMetadataWrite is returned when every metadata write strategy has been exhausted.
	ErrMetadataWrite = errors.New("metadata write failed")
	// ErrFileTypeNotSupported is returned for uploads that are not a supported image type.
	ErrFileTypeNotSupported = errors.New("file type not supported")
)
