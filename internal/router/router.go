package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/movie-catalog/internal/handler"
	"github.com/iliyamo/movie-catalog/internal/middleware"
	"github.com/iliyamo/movie-catalog/internal/model"
)

// Deps carries everything the routes need.  Cache and RateLimit may be
// pass-through middlewares when Redis is not configured.
type Deps struct {
	Auth      *handler.AuthHandler
	Movies    *handler.MovieHandler
	Genres    *handler.GenreHandler
	JWTSecret string
	Users     middleware.UserFinder
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/", handler.Root)
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers signup/login (rate limited) and the protected
// identity endpoint.
func RegisterAuth(e *echo.Echo, d Deps) {
	e.POST("/signup", d.Auth.Signup, mw(d.RateLimit)...)
	e.POST("/login", d.Auth.Login, mw(d.RateLimit)...)
	e.GET("/me", d.Auth.Me, middleware.JWTAuth(d.JWTSecret, d.Users))
}

// RegisterPublic registers the unauthenticated, cached movie listing.
func RegisterPublic(e *echo.Echo, d Deps) {
	g := e.Group("/public", mw(d.Cache)...)
	g.GET("", d.Movies.ListPublicMovies)
	// slugs keep every non-space rune, "/" included
	g.GET("/*", d.Movies.GetPublicMovie)
}

// RegisterMovies registers the movie and genre endpoints.  Everything but
// movie creation requires a token; creation accepts anonymous callers that
// name an authorId, and a token, when sent, must be valid.  Genre writes
// additionally require the Admin role; movie writes are checked against the
// author inside the repository.
func RegisterMovies(e *echo.Echo, d Deps) {
	auth := middleware.JWTAuth(d.JWTSecret, d.Users)
	optional := middleware.OptionalJWTAuth(d.JWTSecret, d.Users)
	admin := middleware.RequireRole(model.RoleAdmin)

	g := e.Group("/movies")
	// static segments take precedence over :id in echo's router
	g.GET("/genre", d.Genres.ListGenres, auth)
	g.POST("/genre", d.Genres.CreateGenre, auth, admin)
	g.PUT("/genre/:id", d.Genres.UpdateGenre, auth, admin)

	g.GET("", d.Movies.ListMovies, auth)
	g.POST("", d.Movies.CreateMovie, optional)
	g.GET("/:id", d.Movies.GetMovie, auth)
	g.PUT("/:id", d.Movies.UpdateMovie, auth)
	g.DELETE("/:id", d.Movies.DeleteMovie, auth)

	// older clients post genres to /genre
	e.POST("/genre", d.Genres.CreateGenre, auth, admin)
}

// RegisterAll wires every route group.
func RegisterAll(e *echo.Echo, d Deps) {
	RegisterRoutes(e)
	RegisterAuth(e, d)
	RegisterPublic(e, d)
	RegisterMovies(e, d)
}

// mw drops a nil middleware so optional layers can be passed through Deps.
func mw(m echo.MiddlewareFunc) []echo.MiddlewareFunc {
	if m == nil {
		return nil
	}
	return []echo.MiddlewareFunc{m}
}
