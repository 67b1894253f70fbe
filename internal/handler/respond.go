package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/repository"
)

// dbTimeout bounds the database work of a single request.
const dbTimeout = 5 * time.Second

func dbContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// badRequest answers 400 with a message array, the shape used for every
// validation failure.
func badRequest(c echo.Context, msgs ...string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"message": msgs})
}

// fail maps a store error onto the HTTP answer.  what names the resource in
// the 404 message, e.g. "movie".
func fail(c echo.Context, err error, what string) error {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return badRequest(c, ve.Messages...)
	case errors.Is(err, repository.ErrGenreNotFound):
		return badRequest(c, "genre not found")
	case errors.Is(err, repository.ErrAuthorNotFound):
		return badRequest(c, "author not found")
	case errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"message": what + " not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case errors.Is(err, context.DeadlineExceeded):
		c.Logger().Errorf("%s: timeout: %v", what, err)
		return c.JSON(http.StatusGatewayTimeout, echo.Map{"message": "request timed out"})
	default:
		c.Logger().Errorf("%s: %v", what, err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal server error"})
	}
}

// pathID parses the :id path parameter.
func pathID(c echo.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// queryInt reads an integer query parameter, returning def when absent or
// malformed.
func queryInt(c echo.Context, name string, def int) int {
	n, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return def
	}
	return n
}
