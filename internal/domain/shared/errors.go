package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError("UNAUTHORIZED", "Not authorized to perform this action")

	// ErrNoneAvailable signals that no referrer currently has free capacity.
	// It is an expected outcome, not a failure: callers translate it into a
	// user-facing "no capacity" answer rather than logging it as an error.
	ErrNoneAvailable = NewDomainError("NONE_AVAILABLE", "No eligible referrer available")

	ErrInvalidReferralCode = NewDomainError("INVALID_REFERRAL_CODE", "Referral code must be non-empty and alphanumeric")
	ErrCapacityExhausted   = NewDomainError("CAPACITY_EXHAUSTED", "Referrer has no remaining assignment capacity")
	ErrClickNotFound       = NewDomainError("CLICK_NOT_FOUND", "Click record not found")

	// ErrIdentityConflict indicates a provider key resolving to more than one
	// account. This cannot happen under correct unique-key enforcement and is
	// surfaced as an internal error, never retried.
	ErrIdentityConflict = NewDomainError("IDENTITY_CONFLICT", "Provider identity maps to multiple accounts")

	// ErrStorageUnavailable wraps persistence-layer failures for callers that
	// must not see driver-specific errors.
	ErrStorageUnavailable = NewDomainError("STORAGE_UNAVAILABLE", "Persistent store is unavailable")
)
