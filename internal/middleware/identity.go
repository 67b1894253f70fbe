package middleware

// identity.go holds helpers shared by handlers and middleware to read the
// identity JWTAuth stored in the Echo context.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/utils"
)

// CurrentUser returns the authenticated payload, if any.
func CurrentUser(c echo.Context) (utils.Payload, bool) {
	p, ok := c.Get(KeyUser).(utils.Payload)
	return p, ok && p.ID != 0
}

// userID returns the caller's id as a string, or "guest" when the request
// is anonymous.
func userID(c echo.Context) string {
	if p, ok := CurrentUser(c); ok {
		return strconv.FormatUint(uint64(p.ID), 10)
	}
	return "guest"
}
