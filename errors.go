package backauth

import (
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found")

// ErrUnableToFindSession is the error when the request carries no session
var ErrUnableToFindSession = errors.New("unable to find session")

// ErrUnableToDecodeSession unable to decode the session token
var ErrUnableToDecodeSession = errors.New("unable to decode session")

// ErrNoEmptyString password input must not be empty
var ErrNoEmptyString = errors.New("password must not be empty")

// ErrMismatchedHashAndPassword cleartext does not match the stored hash
var ErrMismatchedHashAndPassword = errors.New("password does not match")

const (
	textCodeSessionExpired = "SESSION_EXPIRED"
	textCodeTokenExpired   = "TOKEN_EXPIRED"
	textCodeTokenMalformed = "TOKEN_MALFORMED"
	textCodeRoleNotAllowed = "ROLE_NOT_ALLOWED"
	textCodeUserNotActive  = "USER_NOT_ACTIVE"
)

// ErrSessionExpired is returned when the sliding inactivity window ran out.
// Expiry is expected lifecycle behavior: it clears storage and navigates to
// login, it is never shown to the user as an error.
var ErrSessionExpired = goerrors.New("session expired after inactivity", goerrors.CategoryAuth).
	WithTextCode(textCodeSessionExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenExpired is returned for bearer tokens past their expiry claim.
var ErrTokenExpired = goerrors.New("authentication token expired", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenExpired).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMalformed is returned for bearer tokens that fail to parse or verify.
var ErrTokenMalformed = goerrors.New("authentication token malformed", goerrors.CategoryAuth).
	WithTextCode(textCodeTokenMalformed).
	WithCode(goerrors.CodeUnauthorized)

// ErrRoleNotAllowed is returned when a role is not permitted on a path.
var ErrRoleNotAllowed = goerrors.New("role not permitted for path", goerrors.CategoryAuthz).
	WithTextCode(textCodeRoleNotAllowed).
	WithCode(goerrors.CodeForbidden)

// ErrUserNotActive blocks credential exchange for suspended or disabled accounts.
var ErrUserNotActive = goerrors.New("user account is not active", goerrors.CategoryAuth).
	WithTextCode(textCodeUserNotActive).
	WithCode(goerrors.CodeUnauthorized)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == textCodeTokenExpired {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) && richErr.TextCode == textCodeTokenMalformed {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed")
}
