package dto

import "net/http"

// Error codes returned by the referral domain services.
const (
	// ErrCodeNoneAvailable means no referrer currently has free capacity
	ErrCodeNoneAvailable = "NONE_AVAILABLE"
	// ErrCodeInvalidReferralCode covers malformed or unknown referral codes
	ErrCodeInvalidReferralCode = "INVALID_REFERRAL_CODE"
	// ErrCodeCapacityExhausted means all of a referrer's slots are taken
	ErrCodeCapacityExhausted = "CAPACITY_EXHAUSTED"
	// ErrCodeClickNotFound means a click record does not exist
	ErrCodeClickNotFound = "CLICK_NOT_FOUND"
	// ErrCodeMemberNotFound means a member record does not exist
	ErrCodeMemberNotFound = "MEMBER_NOT_FOUND"
	// ErrCodeAssignmentNotFound means an assignment record does not exist
	ErrCodeAssignmentNotFound = "ASSIGNMENT_NOT_FOUND"
	// ErrCodeCodeTaken means a referral code is already claimed
	ErrCodeCodeTaken = "CODE_TAKEN"
	// ErrCodeIdentityConflict means a credential maps to multiple accounts
	ErrCodeIdentityConflict = "IDENTITY_CONFLICT"
	// ErrCodeInvalidProvider covers unknown identity providers
	ErrCodeInvalidProvider = "INVALID_PROVIDER"
	// ErrCodeAccountNotFound means an account record does not exist
	ErrCodeAccountNotFound = "ACCOUNT_NOT_FOUND"
	// ErrCodeStorageUnavailable means the persistent store failed
	ErrCodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	// ErrCodeNoReferralCode means a member was activated without a code
	ErrCodeNoReferralCode = "NO_REFERRAL_CODE"
	// ErrCodeAlreadyActive means an active member was activated again
	ErrCodeAlreadyActive = "ALREADY_ACTIVE"
	// ErrCodeAlreadyInactive means an inactive member was deactivated again
	ErrCodeAlreadyInactive = "ALREADY_INACTIVE"
)

// Transport-level error codes shared by all handlers.
const (
	ErrCodeInternal            = "ERR_INTERNAL"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeUnauthorized        = "ERR_UNAUTHORIZED"
	ErrCodeForbidden           = "ERR_FORBIDDEN"
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeBadRequest          = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput        = "ERR_INVALID_INPUT"
	ErrCodeRateLimited         = "ERR_RATE_LIMITED"
)

var httpStatusByCode = map[string]int{
	ErrCodeNoneAvailable:       http.StatusNotFound,
	ErrCodeInvalidReferralCode: http.StatusBadRequest,
	ErrCodeCapacityExhausted:   http.StatusUnprocessableEntity,
	ErrCodeClickNotFound:       http.StatusNotFound,
	ErrCodeMemberNotFound:      http.StatusNotFound,
	ErrCodeAssignmentNotFound:  http.StatusNotFound,
	ErrCodeCodeTaken:           http.StatusConflict,
	ErrCodeIdentityConflict:    http.StatusInternalServerError,
	ErrCodeInvalidProvider:     http.StatusBadRequest,
	ErrCodeAccountNotFound:     http.StatusNotFound,
	ErrCodeStorageUnavailable:  http.StatusServiceUnavailable,
	ErrCodeNoReferralCode:      http.StatusUnprocessableEntity,
	ErrCodeAlreadyActive:       http.StatusConflict,
	ErrCodeAlreadyInactive:     http.StatusConflict,

	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeRateLimited:         http.StatusTooManyRequests,
}

// GetHTTPStatus maps an error code to its HTTP status. Unknown codes
// map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := httpStatusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainCodeAliases renames the generic codes raised by the domain
// layer onto the transport registry above. Referral-specific codes
// are already registry codes and pass through untouched.
var domainCodeAliases = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"UNAUTHORIZED":         ErrCodeUnauthorized,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INTERNAL_ERROR":       ErrCodeInternal,
}

// NormalizeErrorCode resolves domain aliases to registry codes.
func NormalizeErrorCode(code string) string {
	if alias, ok := domainCodeAliases[code]; ok {
		return alias
	}
	return code
}

// ValidationDetail describes one failed field validation
type ValidationDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// NewErrorResponseWithRequestID creates an error response carrying the
// request ID for correlation
func NewErrorResponseWithRequestID(code, message, requestID string) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      code,
			Message:   message,
			RequestID: requestID,
		},
	}
}

// NewValidationErrorResponse creates a 400-style response listing the
// failed fields
func NewValidationErrorResponse(message, requestID string, details []ValidationDetail) Response {
	return Response{
		Success: false,
		Error: &ErrorInfo{
			Code:      ErrCodeValidation,
			Message:   message,
			RequestID: requestID,
			Details:   details,
		},
	}
}
