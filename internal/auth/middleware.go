package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"educonnect/internal/httpx"
)

type contextKey string

const claimsContextKey contextKey = "educonnect_claims"

func WithClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, claimsContextKey, c)
}

func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(claimsContextKey).(*Claims)
	return c, ok && c != nil
}

// ParseBearerToken extracts the token from an Authorization header value.
func ParseBearerToken(header string) (string, error) {
	const prefix = "Bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", ErrMissingToken
	}
	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}

// Authenticate rejects requests without a valid bearer token with 401 and
// exposes the validated claims to the next handler.
func Authenticate(v *Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := ParseBearerToken(r.Header.Get("Authorization"))
			if err == nil {
				var claims *Claims
				claims, err = v.Validate(token)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
					return
				}
			}
			status, code, msg := Reason(err)
			logger.Debug("request not authenticated", "path", r.URL.Path, "reason", code)
			httpx.WriteError(w, status, code, msg)
		})
	}
}
