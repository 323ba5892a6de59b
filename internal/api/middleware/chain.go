package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// Authenticator inspects a request and attaches a principal when the
// credential checks out. It never fails the request.
type Authenticator interface {
	Authenticate(c echo.Context)
}

// Matcher selects requests by path.
type Matcher func(path string) bool

// Rule pairs a Matcher with the Authenticator that owns matching requests.
type Rule struct {
	Match         Matcher
	Authenticator Authenticator
}

// PathPrefix matches request paths starting with prefix.
func PathPrefix(prefix string) Matcher {
	return func(path string) bool {
		return strings.HasPrefix(path, prefix)
	}
}

// AnyPath matches every request.
func AnyPath() Matcher {
	return func(string) bool { return true }
}

// Chain runs the Authenticator of the first rule matching the request path.
// Rules are evaluated in order and at most one authenticator runs.
func Chain(rules ...Rule) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, r := range rules {
				if r.Match(path) {
					r.Authenticator.Authenticate(c)
					break
				}
			}
			return next(c)
		}
	}
}

// bearerToken returns the credential of an "Authorization: Bearer" header.
func bearerToken(c echo.Context) (string, bool) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}

	raw := strings.TrimSpace(parts[1])
	return raw, raw != ""
}
