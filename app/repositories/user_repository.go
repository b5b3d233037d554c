package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/pkg/orm"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks up a user by email, ignoring case.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := orm.New(r.db).WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&user)
	return user, userError(err)
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (models.User, error) {
	var user models.User
	err := orm.New(r.db).WithContext(ctx).First(&user, id)
	return user, userError(err)
}

// Create persists a new user. Emails are stored lower-cased.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	err := orm.New(r.db).WithContext(ctx).Create(user)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrEmailTaken
	}
	if err != nil {
		return fmt.Errorf("repositories: create user: %w", err)
	}
	return nil
}

func userError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, orm.ErrNotFound):
		return models.ErrUserNotFound
	}
	return fmt.Errorf("repositories: find user: %w", err)
}
