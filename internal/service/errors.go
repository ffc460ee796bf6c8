package service

import "errors"

// not found
var (
	ErrNotFound       = errors.New("Resource not found")
	ErrMovieNotFound  = errors.New("Movie not found")
	ErrNotInWatchlist = errors.New("Movie not found in watchlist")
)

// conflicts
var (
	ErrAlreadyInWatchlist    = errors.New("Movie already in watchlist")
	ErrAllAlreadyInWatchlist = errors.New("All movies are already in watchlist")
	ErrEmailTaken            = errors.New("User with this email already exists")
	ErrUsernameTaken         = errors.New("Username is already taken")
)

// validation
var (
	ErrInvalidInput       = errors.New("Invalid input")
	ErrInvalidRating      = errors.New("Rating must be between 1 and 5")
	ErrEmptyMovieIDs      = errors.New("Movie IDs array is required")
	ErrSomeMoviesNotFound = errors.New("Some movies not found")
)

// authentication
var (
	ErrInvalidCredentials = errors.New("Invalid email or password")
	ErrUnauthorized       = errors.New("Not authorized, token failed")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
