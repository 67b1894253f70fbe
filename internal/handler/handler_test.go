package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/movie-catalog/internal/handler"
	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/queue"
	"github.com/iliyamo/movie-catalog/internal/repository"
	"github.com/iliyamo/movie-catalog/internal/router"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

const secret = "handler-test-secret"

// --- mocks ---------------------------------------------------------------

type mockUsers struct {
	create     func(ctx context.Context, u *model.User) error
	getByEmail func(ctx context.Context, email string) (*model.User, error)
}

func (m *mockUsers) Create(ctx context.Context, u *model.User) error {
	return m.create(ctx, u)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return m.getByEmail(ctx, email)
}

type mockMovies struct {
	create    func(ctx context.Context, m *model.Movie, genreIDs []uint) error
	list      func(ctx context.Context, q repository.MovieQuery) ([]model.Movie, int64, error)
	getByID   func(ctx context.Context, id uint) (*model.Movie, error)
	getBySlug func(ctx context.Context, slug string) (*model.Movie, error)
	update    func(ctx context.Context, id uint, a repository.Actor, in model.MovieInput) (*model.Movie, error)
	del       func(ctx context.Context, id uint, a repository.Actor) (*model.Movie, error)
}

func (m *mockMovies) Create(ctx context.Context, mv *model.Movie, genreIDs []uint) error {
	return m.create(ctx, mv, genreIDs)
}

func (m *mockMovies) List(ctx context.Context, q repository.MovieQuery) ([]model.Movie, int64, error) {
	return m.list(ctx, q)
}

func (m *mockMovies) GetByID(ctx context.Context, id uint) (*model.Movie, error) {
	return m.getByID(ctx, id)
}

func (m *mockMovies) GetBySlug(ctx context.Context, slug string) (*model.Movie, error) {
	return m.getBySlug(ctx, slug)
}

func (m *mockMovies) Update(ctx context.Context, id uint, a repository.Actor, in model.MovieInput) (*model.Movie, error) {
	return m.update(ctx, id, a, in)
}

func (m *mockMovies) Delete(ctx context.Context, id uint, a repository.Actor) (*model.Movie, error) {
	return m.del(ctx, id, a)
}

type mockGenres struct {
	create func(ctx context.Context, g *model.Genre) error
	list   func(ctx context.Context) ([]model.Genre, error)
	rename func(ctx context.Context, id uint, name string) (*model.Genre, error)
}

func (m *mockGenres) Create(ctx context.Context, g *model.Genre) error { return m.create(ctx, g) }

func (m *mockGenres) List(ctx context.Context) ([]model.Genre, error) { return m.list(ctx) }

func (m *mockGenres) Rename(ctx context.Context, id uint, name string) (*model.Genre, error) {
	return m.rename(ctx, id, name)
}

type recordingPublisher struct{ events []queue.MovieEvent }

func (p *recordingPublisher) Publish(_ context.Context, ev queue.MovieEvent) error {
	p.events = append(p.events, ev)
	return nil
}

type countingCache struct{ calls int }

func (c *countingCache) Invalidate(context.Context) error { c.calls++; return nil }

// --- helpers -------------------------------------------------------------

type fixture struct {
	e      *echo.Echo
	users  *mockUsers
	movies *mockMovies
	genres *mockGenres
	events *recordingPublisher
	cache  *countingCache
}

func newFixture() *fixture {
	f := &fixture{
		users:  &mockUsers{},
		movies: &mockMovies{},
		genres: &mockGenres{},
		events: &recordingPublisher{},
		cache:  &countingCache{},
	}
	f.e = echo.New()
	router.RegisterAll(f.e, router.Deps{
		Auth:      handler.NewAuthHandler(f.users, secret, time.Hour),
		Movies:    handler.NewMovieHandler(f.movies, f.events, f.cache),
		Genres:    handler.NewGenreHandler(f.genres, f.cache),
		JWTSecret: secret,
	})
	return f
}

func token(t *testing.T, id uint, role string) string {
	t.Helper()
	tok, err := utils.PayloadToToken(utils.Payload{ID: id, Email: "user@mail.com", Role: role}, secret, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func (f *fixture) do(method, path, body, tok string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if tok != "" {
		req.Header.Set("access_token", tok)
	}
	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func errorMessages(t *testing.T, rec *httptest.ResponseRecorder) []string {
	t.Helper()
	var body struct {
		Message []string `json:"message"`
	}
	decode(t, rec, &body)
	return body.Message
}

func message(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	decode(t, rec, &body)
	return body.Message
}

// --- health --------------------------------------------------------------

func TestHealthAndRoot(t *testing.T) {
	f := newFixture()
	if rec := f.do(http.MethodGet, "/healthz", "", ""); rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("healthz = %d %q", rec.Code, rec.Body.String())
	}
	if rec := f.do(http.MethodGet, "/", "", ""); rec.Code != http.StatusOK {
		t.Errorf("root = %d", rec.Code)
	}
}

// --- auth ----------------------------------------------------------------

const signupBody = `{"username":"aldo marcelino","email":"aldo@mail.com","password":"bismillah","phoneNumber":"082267580929","address":"MEDAN"}`

func TestSignup(t *testing.T) {
	f := newFixture()
	var stored model.User
	f.users.create = func(_ context.Context, u *model.User) error {
		u.ID = 1
		stored = *u
		return nil
	}

	rec := f.do(http.MethodPost, "/signup", signupBody, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	if stored.Role != model.RoleAdmin || stored.Email != "aldo@mail.com" {
		t.Errorf("stored user = %+v", stored)
	}
	if strings.Contains(rec.Body.String(), "bismillah") || strings.Contains(rec.Body.String(), `"password"`) {
		t.Errorf("response leaks password: %s", rec.Body.String())
	}
	if got := message(t, rec); got != "user created successfully" {
		t.Errorf("message = %q", got)
	}
}

func TestSignupValidation(t *testing.T) {
	cases := []struct {
		name string
		body string
		want []string
	}{
		{"empty email", `{"email":"","password":"bismillah"}`, []string{"email is required", "check your format email"}},
		{"missing email", `{"password":"bismillah"}`, []string{"email is required"}},
		{"empty password", `{"email":"aldo@mail.com","password":""}`, []string{"password is required", "Password minimum 5 charackter"}},
		{"missing password", `{"email":"aldo@mail.com"}`, []string{"password is required"}},
		{"bad format", `{"email":"aldo","password":"bismillah"}`, []string{"check your format email"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.users.create = func(context.Context, *model.User) error {
				t.Fatal("store reached with invalid input")
				return nil
			}
			rec := f.do(http.MethodPost, "/signup", tc.body, "")
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			if got := errorMessages(t, rec); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("messages = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	f := newFixture()
	f.users.create = func(context.Context, *model.User) error {
		return model.NewValidationError("email must be unique")
	}
	rec := f.do(http.MethodPost, "/signup", signupBody, "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := errorMessages(t, rec); !reflect.DeepEqual(got, []string{"email must be unique"}) {
		t.Errorf("messages = %q", got)
	}
}

func TestLogin(t *testing.T) {
	hash, err := utils.HashPassword("bismillah", bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	f := newFixture()
	f.users.getByEmail = func(_ context.Context, email string) (*model.User, error) {
		if email != "aldo@mail.com" {
			return nil, repository.ErrNotFound
		}
		return &model.User{ID: 4, Email: email, Password: hash, Role: model.RoleStaff}, nil
	}

	rec := f.do(http.MethodPost, "/login", `{"email":"aldo@mail.com","password":"bismillah"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var body struct {
		AccessToken string `json:"access_token"`
	}
	decode(t, rec, &body)
	p, err := utils.TokenToPayload(body.AccessToken, secret)
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if p.ID != 4 || p.Role != model.RoleStaff {
		t.Errorf("payload = %+v", p)
	}

	// The issued token opens /me.
	rec = f.do(http.MethodGet, "/me", "", body.AccessToken)
	if rec.Code != http.StatusOK {
		t.Errorf("/me status = %d", rec.Code)
	}

	for _, bad := range []string{
		`{"email":"aldo@mail.com","password":"wrong-pass"}`,
		`{"email":"nobody@mail.com","password":"bismillah"}`,
	} {
		rec := f.do(http.MethodPost, "/login", bad, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s: status = %d, want 401", bad, rec.Code)
		}
	}

	rec = f.do(http.MethodPost, "/login", `{}`, "")
	if got := errorMessages(t, rec); !reflect.DeepEqual(got, []string{"email is required", "password is required"}) {
		t.Errorf("messages = %q", got)
	}
}

// --- movies --------------------------------------------------------------

const movieBody = `{
	"title": "KKN Desa Penari",
	"imgUrl": "https://upload.wikimedia.org/wikipedia/id/1/1e/KKN_Desa_Penari_poster.jpg",
	"synopsis": "Sekelompok mahasiswa menjalani KKN di sebuah desa terpencil.",
	"trailerUrl": "https://www.youtube.com/watch?v=3JqWQkDhJd4",
	"rating": 100,
	"popularity": 100,
	"poster_path": "https://upload.wikimedia.org/wikipedia/id/1/1e/KKN_Desa_Penari_poster.jpg",
	"slug": "ignored",
	"authorId": 999,
	"genreIds": [1, 2],
	"casts": [{"name": "Tissa Biani", "profilePict": "tissa.jpg"}]
}`

type movieResponse struct {
	Message string      `json:"message"`
	Data    model.Movie `json:"data"`
}

func TestCreateMovie(t *testing.T) {
	f := newFixture()
	var gotGenres []uint
	f.movies.create = func(_ context.Context, m *model.Movie, genreIDs []uint) error {
		gotGenres = genreIDs
		m.ID = 10
		return m.BeforeCreate(nil)
	}

	rec := f.do(http.MethodPost, "/movies", movieBody, token(t, 3, model.RoleStaff))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var body movieResponse
	decode(t, rec, &body)
	if body.Message != "movie created successfully" {
		t.Errorf("message = %q", body.Message)
	}
	if body.Data.Slug != utils.GenerateSlug("KKN Desa Penari") {
		t.Errorf("slug = %q", body.Data.Slug)
	}
	if body.Data.AuthorID != 3 {
		t.Errorf("authorId = %d, want caller id 3", body.Data.AuthorID)
	}
	if len(body.Data.Casts) != 1 || body.Data.Casts[0].Name != "Tissa Biani" {
		t.Errorf("casts = %+v", body.Data.Casts)
	}
	if !reflect.DeepEqual(gotGenres, []uint{1, 2}) {
		t.Errorf("genre ids = %v", gotGenres)
	}
	if len(f.events.events) != 1 || f.events.events[0].Type != queue.MovieCreated || f.events.events[0].MovieID != 10 {
		t.Errorf("events = %+v", f.events.events)
	}
	if f.cache.calls != 1 {
		t.Errorf("cache invalidations = %d", f.cache.calls)
	}
}

func withField(t *testing.T, body, field, value string) string {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatal(err)
	}
	if value == "" {
		delete(m, field)
	} else {
		var v any
		if err := json.Unmarshal([]byte(value), &v); err != nil {
			t.Fatal(err)
		}
		m[field] = v
	}
	raw, _ := json.Marshal(m)
	return string(raw)
}

func TestCreateMovieAnonymous(t *testing.T) {
	f := newFixture()
	f.movies.create = func(_ context.Context, m *model.Movie, _ []uint) error {
		if m.AuthorID != 1 {
			return repository.ErrAuthorNotFound
		}
		m.ID = 11
		return m.BeforeCreate(nil)
	}

	rec := f.do(http.MethodPost, "/movies", withField(t, movieBody, "authorId", `1`), "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var body movieResponse
	decode(t, rec, &body)
	if body.Data.AuthorID != 1 || body.Data.Slug != "KKN-Desa-Penari" {
		t.Errorf("data = %+v", body.Data)
	}
	if len(f.events.events) != 1 || f.events.events[0].ActorID != 0 {
		t.Errorf("events = %+v", f.events.events)
	}

	cases := []struct {
		name  string
		value string
		tok   string
		code  int
		want  []string
	}{
		{"no authorId", "", "", http.StatusBadRequest, []string{"authorId is required"}},
		{"blank authorId", `""`, "", http.StatusBadRequest, []string{"authorId is required"}},
		{"blank authorId with token", `""`, token(t, 3, model.RoleStaff), http.StatusBadRequest, []string{"authorId is required"}},
		{"unknown author", `7`, "", http.StatusBadRequest, []string{"author not found"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(http.MethodPost, "/movies", withField(t, movieBody, "authorId", tc.value), tc.tok)
			if rec.Code != tc.code {
				t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
			}
			if got := errorMessages(t, rec); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("messages = %q, want %q", got, tc.want)
			}
		})
	}

	rec = f.do(http.MethodPost, "/movies", movieBody, "not-a-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("invalid token: status = %d, want 401", rec.Code)
	}
}

func TestCreateMovieValidation(t *testing.T) {
	cases := []struct {
		field string
		value string
		want  string
	}{
		{"title", `""`, "title is required"},
		{"synopsis", `""`, "synopsis is required"},
		{"trailerUrl", `""`, "trailerUrl is required"},
		{"imgUrl", `""`, "imgUrl is required"},
		{"rating", `null`, "rating is required"},
		{"rating", `""`, "rating is required"},
		{"rating", `9`, "rating minimum 10"},
	}
	for _, tc := range cases {
		t.Run(tc.field+"="+tc.value, func(t *testing.T) {
			var body map[string]any
			if err := json.Unmarshal([]byte(movieBody), &body); err != nil {
				t.Fatal(err)
			}
			var v any
			_ = json.Unmarshal([]byte(tc.value), &v)
			body[tc.field] = v
			raw, _ := json.Marshal(body)

			f := newFixture()
			f.movies.create = func(context.Context, *model.Movie, []uint) error {
				t.Fatal("store reached with invalid input")
				return nil
			}
			rec := f.do(http.MethodPost, "/movies", string(raw), token(t, 1, model.RoleAdmin))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
			if got := errorMessages(t, rec); !reflect.DeepEqual(got, []string{tc.want}) {
				t.Errorf("messages = %q, want [%q]", got, tc.want)
			}
		})
	}
}

func TestCreateMovieUnknownGenre(t *testing.T) {
	f := newFixture()
	f.movies.create = func(context.Context, *model.Movie, []uint) error { return repository.ErrGenreNotFound }
	rec := f.do(http.MethodPost, "/movies", movieBody, token(t, 1, model.RoleAdmin))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := errorMessages(t, rec); !reflect.DeepEqual(got, []string{"genre not found"}) {
		t.Errorf("messages = %q", got)
	}
	if len(f.events.events) != 0 {
		t.Error("event published for failed write")
	}
}

func TestGetMovie(t *testing.T) {
	f := newFixture()
	f.movies.getByID = func(_ context.Context, id uint) (*model.Movie, error) {
		if id == 10 {
			return &model.Movie{ID: 10, Title: "KKN Desa Penari", Slug: "KKN-Desa-Penari"}, nil
		}
		return nil, repository.ErrNotFound
	}
	tok := token(t, 1, model.RoleStaff)

	if rec := f.do(http.MethodGet, "/movies/10", "", tok); rec.Code != http.StatusOK {
		t.Errorf("found: status = %d", rec.Code)
	}
	rec := f.do(http.MethodGet, "/movies/11", "", tok)
	if rec.Code != http.StatusNotFound || message(t, rec) != "movie not found" {
		t.Errorf("missing: %d %s", rec.Code, rec.Body.String())
	}
	if rec := f.do(http.MethodGet, "/movies/abc", "", tok); rec.Code != http.StatusBadRequest {
		t.Errorf("bad id: status = %d", rec.Code)
	}
	if rec := f.do(http.MethodGet, "/movies/10", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("no token: status = %d", rec.Code)
	}
}

func TestListMovies(t *testing.T) {
	f := newFixture()
	var got repository.MovieQuery
	f.movies.list = func(_ context.Context, q repository.MovieQuery) ([]model.Movie, int64, error) {
		got = q
		return []model.Movie{{ID: 1}, {ID: 2}}, 2, nil
	}
	rec := f.do(http.MethodGet, "/movies?title=kkn&genreId=3", "", token(t, 1, model.RoleStaff))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got.Title != "kkn" || got.GenreID != 3 || got.PageSize != 0 {
		t.Errorf("query = %+v", got)
	}
	var body struct {
		Data  []model.Movie `json:"data"`
		Total int64         `json:"total"`
	}
	decode(t, rec, &body)
	if len(body.Data) != 2 || body.Total != 2 {
		t.Errorf("body = %+v", body)
	}
}

func TestUpdateMovie(t *testing.T) {
	f := newFixture()
	var actor repository.Actor
	f.movies.update = func(_ context.Context, id uint, a repository.Actor, in model.MovieInput) (*model.Movie, error) {
		actor = a
		if a.ID != 3 && a.Role != model.RoleAdmin {
			return nil, repository.ErrForbidden
		}
		m := &model.Movie{ID: id, AuthorID: 3}
		in.Apply(m)
		return m, m.BeforeUpdate(nil)
	}

	rec := f.do(http.MethodPut, "/movies/10", strings.Replace(movieBody, "KKN Desa Penari", "KKN Desa Penari 2", 1), token(t, 3, model.RoleStaff))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", rec.Code, rec.Body.String())
	}
	var body movieResponse
	decode(t, rec, &body)
	if body.Message != "movie updated successfully" || body.Data.Slug != "KKN-Desa-Penari-2" {
		t.Errorf("body = %+v", body)
	}
	if actor != (repository.Actor{ID: 3, Role: model.RoleStaff}) {
		t.Errorf("actor = %+v", actor)
	}

	rec = f.do(http.MethodPut, "/movies/10", movieBody, token(t, 4, model.RoleStaff))
	if rec.Code != http.StatusForbidden {
		t.Errorf("other staff: status = %d, want 403", rec.Code)
	}

	rec = f.do(http.MethodPut, "/movies/10", `{"title":""}`, token(t, 3, model.RoleStaff))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid body: status = %d", rec.Code)
	}
	if len(f.events.events) != 1 || f.events.events[0].Type != queue.MovieUpdated {
		t.Errorf("events = %+v", f.events.events)
	}
}

func TestDeleteMovie(t *testing.T) {
	f := newFixture()
	f.movies.del = func(_ context.Context, id uint, _ repository.Actor) (*model.Movie, error) {
		if id != 10 {
			return nil, repository.ErrNotFound
		}
		return &model.Movie{ID: 10, Title: "KKN Desa Penari"}, nil
	}
	tok := token(t, 1, model.RoleAdmin)

	rec := f.do(http.MethodDelete, "/movies/10", "", tok)
	if rec.Code != http.StatusOK || message(t, rec) != "movie deleted successfully" {
		t.Errorf("delete: %d %s", rec.Code, rec.Body.String())
	}
	if rec := f.do(http.MethodDelete, "/movies/11", "", tok); rec.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d", rec.Code)
	}
	if len(f.events.events) != 1 || f.events.events[0].Type != queue.MovieDeleted {
		t.Errorf("events = %+v", f.events.events)
	}
}

func TestStoreFailureIsInternalError(t *testing.T) {
	f := newFixture()
	f.movies.getByID = func(context.Context, uint) (*model.Movie, error) { return nil, errors.New("connection refused") }
	rec := f.do(http.MethodGet, "/movies/1", "", token(t, 1, model.RoleAdmin))
	if rec.Code != http.StatusInternalServerError || message(t, rec) != "internal server error" {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}

// --- public --------------------------------------------------------------

func TestPublicListing(t *testing.T) {
	f := newFixture()
	var got repository.MovieQuery
	f.movies.list = func(_ context.Context, q repository.MovieQuery) ([]model.Movie, int64, error) {
		got = q
		return []model.Movie{{ID: 1, Author: &model.User{ID: 3, Email: "aldo@mail.com"}}}, 41, nil
	}

	rec := f.do(http.MethodGet, "/public", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got.Page != 1 || got.PageSize != 20 {
		t.Errorf("default query = %+v", got)
	}
	if strings.Contains(rec.Body.String(), "aldo@mail.com") {
		t.Error("public listing exposes author")
	}
	var body struct {
		Total    int64 `json:"total"`
		Page     int   `json:"page"`
		PageSize int   `json:"page_size"`
	}
	decode(t, rec, &body)
	if body.Total != 41 || body.Page != 1 || body.PageSize != 20 {
		t.Errorf("body = %+v", body)
	}

	f.do(http.MethodGet, "/public?page=0&page_size=500", "", "")
	if got.Page != 1 || got.PageSize != 100 {
		t.Errorf("clamped query = %+v", got)
	}
}

func TestPublicMovieBySlug(t *testing.T) {
	f := newFixture()
	f.movies.getBySlug = func(_ context.Context, slug string) (*model.Movie, error) {
		if slug == "KKN-Desa-Penari" {
			return &model.Movie{ID: 1, Slug: slug, Author: &model.User{ID: 3}}, nil
		}
		return nil, repository.ErrNotFound
	}
	rec := f.do(http.MethodGet, "/public/KKN-Desa-Penari", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), `"author"`) {
		t.Errorf("author exposed: %s", rec.Body.String())
	}
	if rec := f.do(http.MethodGet, "/public/nope", "", ""); rec.Code != http.StatusNotFound {
		t.Errorf("missing slug: status = %d", rec.Code)
	}
}

func TestPublicMovieSlugWithReservedCharacters(t *testing.T) {
	f := newFixture()
	var asked []string
	f.movies.getBySlug = func(_ context.Context, slug string) (*model.Movie, error) {
		asked = append(asked, slug)
		return &model.Movie{ID: 1, Slug: slug}, nil
	}
	for _, target := range []string{"/public/Face/Off", "/public/Face%2FOff", "/public/What%3F", "/public/No.%231"} {
		if rec := f.do(http.MethodGet, target, "", ""); rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", target, rec.Code)
		}
	}
	want := []string{"Face/Off", "Face/Off", "What?", "No.#1"}
	if !reflect.DeepEqual(asked, want) {
		t.Errorf("slugs = %q, want %q", asked, want)
	}
	if title := "Face/Off"; utils.GenerateSlug(title) != want[0] {
		t.Errorf("slug of %q = %q", title, utils.GenerateSlug(title))
	}
}

// --- genres --------------------------------------------------------------

func TestCreateGenre(t *testing.T) {
	f := newFixture()
	f.genres.create = func(_ context.Context, g *model.Genre) error { g.ID = 1; return nil }

	for _, path := range []string{"/movies/genre", "/genre"} {
		rec := f.do(http.MethodPost, path, `{"name":"Horror"}`, token(t, 1, model.RoleAdmin))
		if rec.Code != http.StatusCreated {
			t.Fatalf("%s: status = %d body = %s", path, rec.Code, rec.Body.String())
		}
		if got := message(t, rec); got != "genre created successfully" {
			t.Errorf("%s: message = %q", path, got)
		}
	}

	rec := f.do(http.MethodPost, "/movies/genre", `{"name":"Horror"}`, token(t, 2, model.RoleStaff))
	if rec.Code != http.StatusForbidden {
		t.Errorf("staff: status = %d, want 403", rec.Code)
	}
	rec = f.do(http.MethodPost, "/movies/genre", `{"name":"Horror"}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: status = %d, want 401", rec.Code)
	}

	rec = f.do(http.MethodPost, "/movies/genre", `{"name":""}`, token(t, 1, model.RoleAdmin))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty name: status = %d", rec.Code)
	}
	if got := errorMessages(t, rec); !reflect.DeepEqual(got, []string{"genre is required"}) {
		t.Errorf("messages = %q", got)
	}
}

func TestListAndRenameGenre(t *testing.T) {
	f := newFixture()
	f.genres.list = func(context.Context) ([]model.Genre, error) {
		return []model.Genre{{ID: 1, Name: "Horror"}, {ID: 2, Name: "Drama"}}, nil
	}
	f.genres.rename = func(_ context.Context, id uint, name string) (*model.Genre, error) {
		if id != 1 {
			return nil, repository.ErrNotFound
		}
		return &model.Genre{ID: id, Name: name}, nil
	}

	rec := f.do(http.MethodGet, "/movies/genre", "", token(t, 2, model.RoleStaff))
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var list struct {
		Data []model.Genre `json:"data"`
	}
	decode(t, rec, &list)
	if len(list.Data) != 2 {
		t.Errorf("genres = %+v", list.Data)
	}

	rec = f.do(http.MethodPut, "/movies/genre/1", `{"name":" Thriller "}`, token(t, 1, model.RoleAdmin))
	if rec.Code != http.StatusOK {
		t.Fatalf("rename: status = %d", rec.Code)
	}
	var renamed struct {
		Data model.Genre `json:"data"`
	}
	decode(t, rec, &renamed)
	if renamed.Data.Name != "Thriller" {
		t.Errorf("name = %q", renamed.Data.Name)
	}
	if f.cache.calls != 1 {
		t.Errorf("cache invalidations = %d", f.cache.calls)
	}
	rec = f.do(http.MethodPut, "/movies/genre/9", `{"name":"X"}`, token(t, 1, model.RoleAdmin))
	if rec.Code != http.StatusNotFound || message(t, rec) != "genre not found" {
		t.Errorf("missing genre: %d %s", rec.Code, rec.Body.String())
	}
}
