package chat

// Error codes surfaced to clients on both transports.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "ACCESS_UNAUTHORIZED"
	CodeNotFound     = "RESOURCE_NOT_FOUND"
	CodeInternal     = "INTERNAL_SERVER_ERROR"
)

// Kind classifies a domain error.
type Kind int

const (
	// KindValidation marks bad input shape or length, rejected before any store access.
	KindValidation Kind = iota
	// KindUnauthorized marks a caller that is not authenticated or not a workspace member.
	KindUnauthorized
	// KindNotFound marks lookups that legitimately miss.
	KindNotFound
	// KindInternal marks store failures.
	KindInternal
)

// Error is the tagged domain error used uniformly across both transports.
type Error struct {
	Kind    Kind
	Message string
	Code    string
}

func (e *Error) Error() string {
	return e.Message
}

// Validation builds a validation error.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg, Code: CodeValidation}
}

// Unauthorized builds an authorization error.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg, Code: CodeUnauthorized}
}

// NotFound builds a not-found error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Code: CodeNotFound}
}

// Internal wraps a store failure.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: err.Error(), Code: CodeInternal}
}
