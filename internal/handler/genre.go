package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// GenreStore is the persistence the genre endpoints need.
type GenreStore interface {
	Create(ctx context.Context, g *model.Genre) error
	List(ctx context.Context) ([]model.Genre, error)
	Rename(ctx context.Context, id uint, name string) (*model.Genre, error)
}

type GenreHandler struct {
	Genres GenreStore
	Cache  Invalidator
}

func NewGenreHandler(genres GenreStore, cache Invalidator) *GenreHandler {
	return &GenreHandler{Genres: genres, Cache: cache}
}

func (h *GenreHandler) CreateGenre(c echo.Context) error {
	var in model.GenreInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := in.Validate(); err != nil {
		return fail(c, err, "genre")
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	g := model.Genre{Name: strings.TrimSpace(*in.Name)}
	if err := h.Genres.Create(ctx, &g); err != nil {
		return fail(c, err, "genre")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "genre created successfully",
		"data":    g,
	})
}

func (h *GenreHandler) ListGenres(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	items, err := h.Genres.List(ctx)
	if err != nil {
		return fail(c, err, "genre")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items})
}

// UpdateGenre renames a genre.  Cached public listings embed genre names,
// so they are dropped afterwards.
func (h *GenreHandler) UpdateGenre(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	var in model.GenreInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := in.Validate(); err != nil {
		return fail(c, err, "genre")
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	g, err := h.Genres.Rename(ctx, id, strings.TrimSpace(*in.Name))
	if err != nil {
		return fail(c, err, "genre")
	}
	if h.Cache != nil {
		if err := h.Cache.Invalidate(ctx); err != nil {
			c.Logger().Warnf("cache invalidate after genre rename: %v", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "genre updated successfully",
		"data":    g,
	})
}
