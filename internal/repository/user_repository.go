package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/iliyamo/movie-catalog/internal/model"
	"github.com/iliyamo/movie-catalog/internal/utils"
)

type UserRepo struct {
	db   *gorm.DB
	cost int
}

// NewUserRepo returns a repository hashing passwords with the given bcrypt
// cost.
func NewUserRepo(db *gorm.DB, bcryptCost int) *UserRepo {
	return &UserRepo{db: db, cost: bcryptCost}
}

// Create hashes u.Password and inserts the user, filling in u.ID.  A taken
// email comes back as a validation error so it reaches the client as 400.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	hash, err := utils.HashPassword(u.Password, r.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.Password = hash
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.NewValidationError("email must be unique")
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var u model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).Take(&u).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var u model.User
	if err := r.db.WithContext(ctx).Take(&u, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// notFound maps gorm's missing-row error onto ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
