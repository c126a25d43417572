package middleware

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/showcase/service/internal/response"
)

// contextKey is an unexported type for context keys in this package.
type contextKey string

// OperatorKey is the context key for the authenticated operator's subject.
const OperatorKey contextKey = "operator"

// OperatorSubject is the only JWT subject accepted.
const OperatorSubject = "operator"

// VisitorHeader carries the opaque id a browser uses for favorites.
const VisitorHeader = "X-Visitor-ID"

var visitorIDPattern = regexp.MustCompile(`^[A-Za-z0-9-]{8,64}$`)

var errMissingBearer = errors.New("missing bearer token")

// RequireAuth returns middleware that validates a Bearer JWT and injects
// the operator subject into the request context.
func RequireAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "authorization header required")
				return
			}
			sub, err := subjectFromHeader(authHeader, jwtSecret)
			if errors.Is(err, errMissingBearer) {
				response.Unauthorized(w, "invalid authorization header format")
				return
			}
			if err != nil {
				response.Unauthorized(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), OperatorKey, sub)))
		})
	}
}

// OptionalAuth marks the request as the operator's when a valid token is
// present and lets every request through otherwise.
func OptionalAuth(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if sub, err := subjectFromHeader(r.Header.Get("Authorization"), jwtSecret); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), OperatorKey, sub))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// IsOperator reports whether the request was authenticated as the operator.
func IsOperator(ctx context.Context) bool {
	sub, ok := ctx.Value(OperatorKey).(string)
	return ok && sub != ""
}

// VisitorID returns the visitor id sent with the request, or "" when it is
// missing or malformed.
func VisitorID(r *http.Request) string {
	id := strings.TrimSpace(r.Header.Get(VisitorHeader))
	if !visitorIDPattern.MatchString(id) {
		return ""
	}
	return id
}

func subjectFromHeader(authHeader, jwtSecret string) (string, error) {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", errMissingBearer
	}

	token, err := jwt.Parse(parts[1], func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid token")
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub != OperatorSubject {
		return "", errors.New("invalid token claims")
	}
	return sub, nil
}
