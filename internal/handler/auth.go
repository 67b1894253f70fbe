package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

// UserStore is the persistence the auth endpoints need.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Users     UserStore
	JWTSecret string
	AccessTTL time.Duration
}

func NewAuthHandler(users UserStore, jwtSecret string, accessTTL time.Duration) *AuthHandler {
	return &AuthHandler{Users: users, JWTSecret: jwtSecret, AccessTTL: accessTTL}
}

// Signup: validate, hash and store a new user.
func (h *AuthHandler) Signup(c echo.Context) error {
	var in model.SignupInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := in.Validate(); err != nil {
		return fail(c, err, "user")
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	u := in.ToUser()
	if err := h.Users.Create(ctx, &u); err != nil {
		return fail(c, err, "user")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "user created successfully",
		"data":    u,
	})
}

// Login: verify credentials and return a signed access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var in model.LoginInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := in.Validate(); err != nil {
		return fail(c, err, "user")
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, *in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
		}
		return fail(c, err, "user")
	}
	if !utils.VerifyPassword(u.Password, *in.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "invalid email or password"})
	}

	token, err := utils.PayloadToToken(payloadOf(u), h.JWTSecret, h.AccessTTL)
	if err != nil {
		return fail(c, err, "token")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message":      "login success",
		"access_token": token,
		"data":         u,
	})
}

// Me returns the identity carried by the caller's token.
func (h *AuthHandler) Me(c echo.Context) error {
	p, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing access token"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": p})
}

// payloadOf strips the password hash and timestamps from u.
func payloadOf(u *model.User) utils.Payload {
	return utils.Payload{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        u.Role,
		PhoneNumber: u.PhoneNumber,
		Address:     u.Address,
	}
}
