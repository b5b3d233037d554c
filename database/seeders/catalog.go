package seeders

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/app/repositories"
	"github.com/gamevault/storefront/config"
	"github.com/gamevault/storefront/pkg/auth"
	"github.com/gamevault/storefront/pkg/cache"
	"github.com/gamevault/storefront/pkg/logger"
)

// DefaultGenres are created by the genres seeder.
var DefaultGenres = []string{
	"Action", "Adventure", "Fighting", "Horror", "Platformer",
	"Puzzle", "Racing", "RPG", "Shooter", "Simulation", "Sports", "Strategy",
}

func init() {
	Register("genres", SeedGenres)
	Register("admin", SeedAdmin)
}

// SeedGenres creates DefaultGenres that do not exist yet.
func SeedGenres(ctx context.Context, db *gorm.DB) error {
	repo := repositories.NewGenreRepository(db, cache.Default())
	for _, name := range DefaultGenres {
		if _, err := repo.FirstOrCreate(ctx, name); err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin creates the ADMIN_EMAIL account with ADMIN_PASSWORD. It is
// skipped when either is unset or the account exists.
func SeedAdmin(ctx context.Context, db *gorm.DB) error {
	email, password := config.AdminEmail(), config.AdminPassword()
	if email == "" || password == "" {
		logger.Info("seeders: ADMIN_EMAIL/ADMIN_PASSWORD unset, skipping admin")
		return nil
	}

	users := repositories.NewUserRepository(db)
	_, err := users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, models.ErrUserNotFound):
		return err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	return users.Create(ctx, &models.User{
		Name:     "Administrator",
		Email:    email,
		Password: hash,
		Role:     models.RoleAdmin,
	})
}
