package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// MovieQuery defines filters & pagination for movie listings.  Zero values
// disable the corresponding filter; PageSize 0 returns every row.
type MovieQuery struct {
	Title    string
	GenreID  uint
	Page     int
	PageSize int
}

// Actor is the authenticated caller of a write operation.
type Actor struct {
	ID   uint
	Role string
}

// CanModify reports whether the actor may change or delete m: admins may
// touch any movie, everyone else only their own.
func (a Actor) CanModify(m *model.Movie) bool {
	return a.Role == model.RoleAdmin || (a.ID != 0 && a.ID == m.AuthorID)
}

// MovieRepo encapsulates all queries on movies and their genre links and
// cast rows.
type MovieRepo struct {
	db *gorm.DB
}

func NewMovieRepo(db *gorm.DB) *MovieRepo {
	return &MovieRepo{db: db}
}

// withRelations preloads author, cast and genres.
func withRelations(tx *gorm.DB) *gorm.DB {
	return tx.
		Preload("Author").
		Preload("Casts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("GenreMovies", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("GenreMovies.Genre")
}

// Create inserts m together with its cast rows and one GenreMovie per
// genre id, all in one transaction.  On success m is reloaded with its
// relations.  Unknown genre ids fail with ErrGenreNotFound and an unknown
// author with ErrAuthorNotFound.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie, genreIDs []uint) error {
	ids := uniqueIDs(genreIDs)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var authors int64
		if err := tx.Model(&model.User{}).Where("id = ?", m.AuthorID).Count(&authors).Error; err != nil {
			return fmt.Errorf("check author: %w", err)
		}
		if authors == 0 {
			return ErrAuthorNotFound
		}
		if err := ensureGenres(tx, ids); err != nil {
			return err
		}
		m.GenreMovies = joinRows(0, ids)
		if err := tx.Omit("Author").Create(m).Error; err != nil {
			return fmt.Errorf("create movie: %w", err)
		}
		var fresh model.Movie
		if err := withRelations(tx).Take(&fresh, m.ID).Error; err != nil {
			return fmt.Errorf("reload movie: %w", err)
		}
		*m = fresh
		return nil
	})
}

// List returns the page of movies selected by q plus the total number of
// matching rows.
func (r *MovieRepo) List(ctx context.Context, q MovieQuery) ([]model.Movie, int64, error) {
	filter := func(db *gorm.DB) *gorm.DB {
		if t := strings.TrimSpace(q.Title); t != "" {
			db = db.Where("LOWER(movies.title) LIKE ?", "%"+strings.ToLower(t)+"%")
		}
		if q.GenreID != 0 {
			db = db.Where("EXISTS (SELECT 1 FROM genre_movies gm WHERE gm.movie_id = movies.id AND gm.genre_id = ?)", q.GenreID)
		}
		return db
	}

	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Movie{}).Scopes(filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count movies: %w", err)
	}

	tx := withRelations(r.db.WithContext(ctx)).Scopes(filter).Order("movies.id")
	if q.PageSize > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		tx = tx.Limit(q.PageSize).Offset((page - 1) * q.PageSize)
	}
	out := []model.Movie{}
	if err := tx.Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("list movies: %w", err)
	}
	return out, total, nil
}

// GetByID loads one movie with its relations.
func (r *MovieRepo) GetByID(ctx context.Context, id uint) (*model.Movie, error) {
	var m model.Movie
	if err := withRelations(r.db.WithContext(ctx)).Take(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// GetBySlug loads the oldest movie carrying slug.  Slugs are not unique.
func (r *MovieRepo) GetBySlug(ctx context.Context, slug string) (*model.Movie, error) {
	var m model.Movie
	err := withRelations(r.db.WithContext(ctx)).
		Where("slug = ?", slug).Order("id").First(&m).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// Update overwrites the movie fields from in on behalf of actor.  The slug
// is re-derived by the update hook.  Genre links and cast rows are replaced
// only when the input carries them (a non-nil slice, possibly empty).
func (r *MovieRepo) Update(ctx context.Context, id uint, actor Actor, in model.MovieInput) (*model.Movie, error) {
	var out model.Movie
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.Movie
		if err := tx.Take(&m, id).Error; err != nil {
			return notFound(err)
		}
		if !actor.CanModify(&m) {
			return ErrForbidden
		}
		in.Apply(&m)
		if err := tx.Omit(clause.Associations).Save(&m).Error; err != nil {
			return fmt.Errorf("update movie: %w", err)
		}
		if in.GenreIDs != nil {
			ids := uniqueIDs(in.GenreIDs)
			if err := ensureGenres(tx, ids); err != nil {
				return err
			}
			if err := tx.Where("movie_id = ?", m.ID).Delete(&model.GenreMovie{}).Error; err != nil {
				return fmt.Errorf("clear genres: %w", err)
			}
			if rows := joinRows(m.ID, ids); len(rows) > 0 {
				if err := tx.Create(&rows).Error; err != nil {
					return fmt.Errorf("link genres: %w", err)
				}
			}
		}
		if in.Casts != nil {
			if err := tx.Where("movie_id = ?", m.ID).Delete(&model.MovieCast{}).Error; err != nil {
				return fmt.Errorf("clear casts: %w", err)
			}
			if rows := in.CastRows(); len(rows) > 0 {
				for i := range rows {
					rows[i].MovieID = m.ID
				}
				if err := tx.Create(&rows).Error; err != nil {
					return fmt.Errorf("create casts: %w", err)
				}
			}
		}
		return withRelations(tx).Take(&out, m.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes a movie with its genre links and cast rows on behalf of
// actor and returns the deleted row.
func (r *MovieRepo) Delete(ctx context.Context, id uint, actor Actor) (*model.Movie, error) {
	var m model.Movie
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&m, id).Error; err != nil {
			return notFound(err)
		}
		if !actor.CanModify(&m) {
			return ErrForbidden
		}
		if err := tx.Where("movie_id = ?", id).Delete(&model.GenreMovie{}).Error; err != nil {
			return err
		}
		if err := tx.Where("movie_id = ?", id).Delete(&model.MovieCast{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Movie{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// ensureGenres fails with ErrGenreNotFound unless every id exists.
func ensureGenres(tx *gorm.DB, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var n int64
	if err := tx.Model(&model.Genre{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return fmt.Errorf("check genres: %w", err)
	}
	if int(n) != len(ids) {
		return ErrGenreNotFound
	}
	return nil
}

func joinRows(movieID uint, genreIDs []uint) []model.GenreMovie {
	rows := make([]model.GenreMovie, 0, len(genreIDs))
	for _, gid := range genreIDs {
		rows = append(rows, model.GenreMovie{MovieID: movieID, GenreID: gid})
	}
	return rows
}

// uniqueIDs drops zeros and duplicates and sorts the rest.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
