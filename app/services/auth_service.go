package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gamevault/storefront/app/models"
	"github.com/gamevault/storefront/app/repositories"
	"github.com/gamevault/storefront/pkg/auth"
	"github.com/gamevault/storefront/pkg/logger"
	"github.com/gamevault/storefront/pkg/validate"
)

type RegisterInput struct {
	Name                 string `json:"name"                  validate:"required,max=100"`
	Email                string `json:"email"                 validate:"required,email,max=255"`
	Password             string `json:"password"              validate:"required,min=8,confirmed"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type LoginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthService registers and signs in storefront accounts.
type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// Register creates a customer account.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return models.User{}, models.ValidationErrors(errs)
	}

	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		return models.User{}, models.ErrEmailTaken
	case !errors.Is(err, models.ErrUserNotFound):
		return models.User{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("services: hash password: %w", err)
	}

	user := models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    in.Email,
		Password: hash,
		Role:     models.RoleUser,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, err
	}
	logger.WithCtx(ctx).Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and issues a JWT. Unknown emails and wrong
// passwords both return ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (string, models.User, error) {
	if errs := validate.Struct(in); validate.HasErrors(errs) {
		return "", models.User{}, models.ValidationErrors(errs)
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if errors.Is(err, models.ErrUserNotFound) {
		return "", models.User{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return "", models.User{}, err
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		logger.WithCtx(ctx).Info("failed login", "user_id", user.ID)
		return "", models.User{}, models.ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return "", models.User{}, fmt.Errorf("services: issue token: %w", err)
	}
	return token, user, nil
}

// Account returns the user with id.
func (s *AuthService) Account(ctx context.Context, id uint) (models.User, error) {
	return s.users.FindByID(ctx, id)
}
