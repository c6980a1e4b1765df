package app

import "errors"

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrMethodNotFound  = errors.New("se method not found")
	ErrClaimNotFound   = errors.New("claim not found")
	ErrUserNotFound    = errors.New("user not found")

	// ErrInvalidStatus is returned when a status value is outside the workflow enum.
	ErrInvalidStatus = errors.New("invalid article status")
	// ErrIllegalTransition is returned when a status write would skip or reverse
	// a workflow step. The source system accepted such writes silently; here they
	// are rejected server-side.
	ErrIllegalTransition = errors.New("illegal status transition")
	// ErrMissingAnalysis is returned when an approval lacks the SE method, claim,
	// or evidence that must be stored atomically with the approved status.
	ErrMissingAnalysis = errors.New("approval requires seMethod, claim and evidence")
	ErrUnknownClaim    = errors.New("claim does not belong to the selected se method")
	ErrInvalidEvidence = errors.New("invalid evidence category")
	ErrInvalidSort     = errors.New("sortOrder must be asc or desc")

	// ErrInvalidRating replaces the source's silent no-op on out-of-range ratings.
	ErrInvalidRating = errors.New("rating must be between 0 and 5")

	ErrMissingArticleFields = errors.New("title and pubYear are required")
	ErrMissingMethodName    = errors.New("method name is required")
	ErrMissingClaimName     = errors.New("claim name is required")
	ErrMissingTitle         = errors.New("title is required")

	ErrMissingSignupFields = errors.New("username, email and password are required")
	ErrUserExists          = errors.New("username or email already exists")
	// ErrInvalidCredentials is shown to end users and must not enable account enumeration.
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrUnauthorized       = errors.New("unauthorized")
)
