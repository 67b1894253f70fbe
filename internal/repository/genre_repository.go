package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/iliyamo/movie-catalog/internal/model"
)

// GenreRepo encapsulates all queries on the genres table.
type GenreRepo struct {
	db *gorm.DB
}

func NewGenreRepo(db *gorm.DB) *GenreRepo {
	return &GenreRepo{db: db}
}

// Create inserts g and fills in its ID.
func (r *GenreRepo) Create(ctx context.Context, g *model.Genre) error {
	if err := r.db.WithContext(ctx).Create(g).Error; err != nil {
		return fmt.Errorf("create genre: %w", err)
	}
	return nil
}

// List returns all genres ordered by id.
func (r *GenreRepo) List(ctx context.Context) ([]model.Genre, error) {
	out := []model.Genre{}
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	return out, nil
}

// Rename sets a new name on genre id.  ErrNotFound when it does not exist.
func (r *GenreRepo) Rename(ctx context.Context, id uint, name string) (*model.Genre, error) {
	var g model.Genre
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Take(&g, id).Error; err != nil {
			return notFound(err)
		}
		g.Name = name
		return tx.Save(&g).Error
	})
	if err != nil {
		return nil, err
	}
	return &g, nil
}
