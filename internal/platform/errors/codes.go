package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Validation errors
	CodeValidation Code = "VALIDATION_ERROR"

	// Credential errors
	CodeDuplicateEmail    Code = "DUPLICATE_EMAIL"
	CodeInvalidCredential Code = "INVALID_CREDENTIAL"

	// Token errors
	CodeNoToken          Code = "NO_TOKEN"
	CodeTokenMalformed   Code = "TOKEN_MALFORMED"
	CodeTokenExpired     Code = "TOKEN_EXPIRED"
	CodeTokenNotYetValid Code = "TOKEN_NOT_YET_VALID"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"

	// Configuration errors
	CodeServerMisconfigured Code = "SERVER_MISCONFIGURED"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - validation failures, bad input
	case CodeValidation:
		return http.StatusBadRequest

	// Unauthorized - missing, rejected, or expired credentials
	case CodeInvalidCredential,
		CodeNoToken,
		CodeTokenMalformed,
		CodeTokenExpired,
		CodeTokenNotYetValid:
		return http.StatusUnauthorized

	// NotFound - absent or not-owned resources
	case CodeNotFound:
		return http.StatusNotFound

	// Conflict - unique resource constraint
	case CodeDuplicateEmail:
		return http.StatusConflict

	default:
		return http.StatusInternalServerError
	}
}
