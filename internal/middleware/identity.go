package middleware

// identity.go defines helper functions shared across middleware and
// handlers. They read the claims JWTAuth stored in the Echo context and
// normalize their types: JWT numeric claims decode as float64, while some
// dashboards issue string subjects.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// CurrentUserID extracts the authenticated user's numeric id from context.
// Returns 0 when no user is authenticated or the claim is malformed.
func CurrentUserID(c echo.Context) int64 {
	switch v := c.Get("user_id").(type) {
	case float64:
		return int64(v)
	case int64:
		return v
	case string:
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

// CurrentRole returns the role claim, or "" when absent.
func CurrentRole(c echo.Context) string {
	if s, ok := c.Get("role").(string); ok {
		return s
	}
	return ""
}

// CurrentTimezone returns the viewer's school time zone claim, or "" when
// the token does not carry one.
func CurrentTimezone(c echo.Context) string {
	if s, ok := c.Get("school_timezone").(string); ok {
		return s
	}
	return ""
}
