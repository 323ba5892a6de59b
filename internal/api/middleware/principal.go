package middleware

import "github.com/labstack/echo/v4"

const (
	ctxAccountKey = "auth.account"
	ctxCallerKey  = "auth.caller"
)

// AccountPrincipal identifies a dashboard user authenticated by session token.
type AccountPrincipal struct {
	AccountID int64
}

// CallerPrincipal identifies a /v1 client authenticated by API key.
type CallerPrincipal struct {
	AccountID int64
	KeyID     int64
}

// AccountFrom returns the session principal attached to c, if any.
func AccountFrom(c echo.Context) (AccountPrincipal, bool) {
	p, ok := c.Get(ctxAccountKey).(AccountPrincipal)
	return p, ok
}

// CallerFrom returns the API key principal attached to c, if any.
func CallerFrom(c echo.Context) (CallerPrincipal, bool) {
	p, ok := c.Get(ctxCallerKey).(CallerPrincipal)
	return p, ok
}

// SetAccount attaches a session principal to c.
func SetAccount(c echo.Context, p AccountPrincipal) {
	c.Set(ctxAccountKey, p)
}

// SetCaller attaches an API key principal to c.
func SetCaller(c echo.Context, p CallerPrincipal) {
	c.Set(ctxCallerKey, p)
}
