package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

// Context keys set by JWTAuth.
const (
	KeyUser   = "user"    // utils.Payload
	KeyUserID = "user_id" // uint
	KeyRole   = "role"    // string
)

// TokenHeader is the request header carrying the access token.  A standard
// "Authorization: Bearer" header is accepted as a fallback.
const TokenHeader = "access_token"

// UserFinder resolves the user a token was issued for.
type UserFinder interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
}

// JWTAuth returns an Echo middleware that verifies the access token and
// stores the caller's identity in the context.  Missing, malformed,
// tampered or expired tokens are rejected with 401.  When users is non-nil
// the token's user must still exist, and the stored role wins over the one
// in the token.
func JWTAuth(secret string, users UserFinder) echo.MiddlewareFunc {
	return jwtAuth(secret, users, false)
}

// OptionalJWTAuth is JWTAuth for routes open to anonymous callers: a request
// without a token passes through with no identity, while a token that is
// sent must still be valid.
func OptionalJWTAuth(secret string, users UserFinder) echo.MiddlewareFunc {
	return jwtAuth(secret, users, true)
}

func jwtAuth(secret string, users UserFinder, optional bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := tokenFrom(c.Request())
			if raw == "" {
				if optional {
					return next(c)
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing access token"})
			}
			p, err := utils.TokenToPayload(raw, secret)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid token"})
			}
			if users != nil {
				u, err := users.GetByID(c.Request().Context(), p.ID)
				if err != nil {
					if errors.Is(err, repository.ErrNotFound) {
						return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid token"})
					}
					c.Logger().Errorf("auth: load user %d: %v", p.ID, err)
					return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
				}
				p.Role = u.Role
				p.Email = u.Email
			}
			c.Set(KeyUser, p)
			c.Set(KeyUserID, p.ID)
			c.Set(KeyRole, p.Role)
			return next(c)
		}
	}
}

// tokenFrom reads the access_token header, then the Bearer header.
func tokenFrom(r *http.Request) string {
	if v := strings.TrimSpace(r.Header.Get(TokenHeader)); v != "" {
		return v
	}
	auth := r.Header.Get(echo.HeaderAuthorization)
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
