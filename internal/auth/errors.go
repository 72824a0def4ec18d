package auth

import (
	"errors"
	"net/http"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidRole       = errors.New("invalid role")
	ErrDuplicateIdentity = errors.New("identity or email already registered")
	ErrUnknownIdentity   = errors.New("unknown identity")
	ErrBadCredential     = errors.New("bad credential")
	ErrRoleNotPermitted  = errors.New("role not permitted")

	// ErrConfigurationMissing is fatal at startup.
	ErrConfigurationMissing = errors.New("auth configuration missing")
)

var (
	ErrMissingToken          = errors.New("token: missing bearer token")
	ErrTokenMalformed        = errors.New("token: malformed")
	ErrTokenExpired          = errors.New("token: expired")
	ErrTokenSignatureInvalid = errors.New("token: invalid signature")
	ErrTokenClaimsInvalid    = errors.New("token: invalid claims")
)

var ErrUserNotFound = errors.New("user not found")

type reason struct {
	err     error
	status  int
	code    string
	message string
}

// Order matters: the first match wins.
var reasons = []reason{
	{ErrInvalidInput, http.StatusBadRequest, "invalid_request", ""},
	{ErrInvalidRole, http.StatusBadRequest, "invalid_request", ""},
	{ErrDuplicateIdentity, http.StatusConflict, "duplicate_identity", "id or email already in use"},
	{ErrUnknownIdentity, http.StatusUnauthorized, "invalid_credentials", "invalid id or password"},
	{ErrBadCredential, http.StatusUnauthorized, "invalid_credentials", "invalid id or password"},
	{ErrRoleNotPermitted, http.StatusForbidden, "role_not_permitted", "the user is not allowed to login with this role"},
	{ErrMissingToken, http.StatusUnauthorized, "unauthenticated", "bearer token required"},
	{ErrTokenExpired, http.StatusUnauthorized, "token_expired", "token has expired"},
	{ErrTokenSignatureInvalid, http.StatusUnauthorized, "token_signature_invalid", "token signature is invalid"},
	{ErrTokenClaimsInvalid, http.StatusUnauthorized, "token_claims_invalid", "token claims are not acceptable"},
	{ErrTokenMalformed, http.StatusUnauthorized, "token_malformed", "token is malformed"},
}

// Reason maps an auth error to an HTTP status, a stable reason code and a
// client-safe message. Unrecognised errors map to 500.
func Reason(err error) (status int, code, message string) {
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			msg := r.message
			if msg == "" {
				msg = err.Error()
			}
			return r.status, r.code, msg
		}
	}
	return http.StatusInternalServerError, "internal_error", "internal error"
}
