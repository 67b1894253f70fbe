package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/queue"
	"github.com/iliyamo/movie-catalog/internal/repository"
)

// MovieStore is the persistence the movie endpoints need.
type MovieStore interface {
	Create(ctx context.Context, m *model.Movie, genreIDs []uint) error
	List(ctx context.Context, q repository.MovieQuery) ([]model.Movie, int64, error)
	GetByID(ctx context.Context, id uint) (*model.Movie, error)
	GetBySlug(ctx context.Context, slug string) (*model.Movie, error)
	Update(ctx context.Context, id uint, actor repository.Actor, in model.MovieInput) (*model.Movie, error)
	Delete(ctx context.Context, id uint, actor repository.Actor) (*model.Movie, error)
}

// EventPublisher receives a MovieEvent after every successful write.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.MovieEvent) error
}

// Invalidator drops cached public responses after a write.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// MovieHandler serves the authenticated /movies endpoints and the public
// listing.  Events and Cache are optional.
type MovieHandler struct {
	Movies MovieStore
	Events EventPublisher
	Cache  Invalidator
}

func NewMovieHandler(movies MovieStore, events EventPublisher, cache Invalidator) *MovieHandler {
	if movies == nil {
		panic("nil movie store passed to NewMovieHandler")
	}
	return &MovieHandler{Movies: movies, Events: events, Cache: cache}
}

// CreateMovie validates the body and stores the movie.  With a token the
// caller is the author; anonymous requests must name one in authorId.  The
// slug is derived from the title by the model hook.
func (h *MovieHandler) CreateMovie(c echo.Context) error {
	caller, authed := middleware.CurrentUser(c)
	var in model.MovieInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := in.ValidateCreate(!authed); err != nil {
		return fail(c, err, "movie")
	}
	authorID := caller.ID
	if !authed {
		authorID = uint(in.AuthorID.Int)
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	m := model.Movie{AuthorID: authorID}
	in.Apply(&m)
	m.Casts = in.CastRows()
	if err := h.Movies.Create(ctx, &m, in.GenreIDs); err != nil {
		return fail(c, err, "movie")
	}
	h.afterWrite(c, queue.MovieCreated, &m)
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "movie created successfully",
		"data":    m,
	})
}

// ListMovies returns every movie with author, genres and casts.  The
// optional title/genreId/page/page_size parameters narrow the result.
func (h *MovieHandler) ListMovies(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	q := listQuery(c, 0)
	items, total, err := h.Movies.List(ctx, q)
	if err != nil {
		return fail(c, err, "movie")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": items, "total": total})
}

// ListPublicMovies is the unauthenticated, paginated listing.  Author
// details are not exposed.
func (h *MovieHandler) ListPublicMovies(c echo.Context) error {
	ctx, cancel := dbContext(c)
	defer cancel()

	q := listQuery(c, 20)
	items, total, err := h.Movies.List(ctx, q)
	if err != nil {
		return fail(c, err, "movie")
	}
	for i := range items {
		items[i].Author = nil
	}
	return c.JSON(http.StatusOK, echo.Map{
		"data":      items,
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	})
}

// GetPublicMovie looks a movie up by slug.  The route is a wildcard so
// slugs containing "/" resolve; escaped characters are decoded.
func (h *MovieHandler) GetPublicMovie(c echo.Context) error {
	slug := c.Param("*")
	if c.Request().URL.RawPath != "" {
		if s, err := url.PathUnescape(slug); err == nil {
			slug = s
		}
	}
	if strings.TrimSpace(slug) == "" {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "movie not found"})
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	m, err := h.Movies.GetBySlug(ctx, slug)
	if err != nil {
		return fail(c, err, "movie")
	}
	m.Author = nil
	return c.JSON(http.StatusOK, echo.Map{"data": m})
}

// GetMovie returns one movie by id.
func (h *MovieHandler) GetMovie(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return fail(c, err, "movie")
	}
	return c.JSON(http.StatusOK, echo.Map{"data": m})
}

// UpdateMovie re-validates the full body and overwrites the movie.  Only the
// author or an Admin may update.
func (h *MovieHandler) UpdateMovie(c echo.Context) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing access token"})
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	var in model.MovieInput
	if err := c.Bind(&in); err != nil {
		return badRequest(c, "invalid body")
	}
	if err := in.Validate(); err != nil {
		return fail(c, err, "movie")
	}

	ctx, cancel := dbContext(c)
	defer cancel()

	m, err := h.Movies.Update(ctx, id, repository.Actor{ID: caller.ID, Role: caller.Role}, in)
	if err != nil {
		return fail(c, err, "movie")
	}
	h.afterWrite(c, queue.MovieUpdated, m)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "movie updated successfully",
		"data":    m,
	})
}

// DeleteMovie removes a movie.  Only the author or an Admin may delete.
func (h *MovieHandler) DeleteMovie(c echo.Context) error {
	caller, ok := middleware.CurrentUser(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "missing access token"})
	}
	id, ok := pathID(c)
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := dbContext(c)
	defer cancel()

	m, err := h.Movies.Delete(ctx, id, repository.Actor{ID: caller.ID, Role: caller.Role})
	if err != nil {
		return fail(c, err, "movie")
	}
	h.afterWrite(c, queue.MovieDeleted, m)
	return c.JSON(http.StatusOK, echo.Map{"message": "movie deleted successfully"})
}

// afterWrite drops cached listings and publishes the event.  Failures are
// logged only; the write itself already succeeded.
func (h *MovieHandler) afterWrite(c echo.Context, kind string, m *model.Movie) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if h.Cache != nil {
		if err := h.Cache.Invalidate(ctx); err != nil {
			c.Logger().Warnf("cache invalidate after %s: %v", kind, err)
		}
	}
	if h.Events == nil {
		return
	}
	caller, _ := middleware.CurrentUser(c)
	ev := queue.MovieEvent{
		Type:       kind,
		MovieID:    m.ID,
		Title:      m.Title,
		Slug:       m.Slug,
		AuthorID:   m.AuthorID,
		ActorID:    caller.ID,
		ActorEmail: caller.Email,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := h.Events.Publish(ctx, ev); err != nil {
		c.Logger().Warnf("publish %s for movie %d: %v", kind, m.ID, err)
	}
}

// listQuery reads title, genreId, page and page_size.  defSize 0 means no
// pagination unless the client asks for it; sizes are capped at 100.
func listQuery(c echo.Context, defSize int) repository.MovieQuery {
	q := repository.MovieQuery{
		Title:    strings.TrimSpace(c.QueryParam("title")),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", defSize),
	}
	if g := queryInt(c, "genreId", 0); g > 0 {
		q.GenreID = uint(g)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 0 {
		q.PageSize = defSize
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
	return q
}
