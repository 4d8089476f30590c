package services

import (
	"context"
	"errors"

	"github.com/shashiranjanraj/kalakriti/app/models"
	"github.com/shashiranjanraj/kalakriti/app/repositories"
	"github.com/shashiranjanraj/kalakriti/pkg/apperr"
	"github.com/shashiranjanraj/kalakriti/pkg/auth"
	"github.com/shashiranjanraj/kalakriti/pkg/rbac"
	"github.com/shashiranjanraj/kalakriti/pkg/storage"
	"gorm.io/gorm"
)

// AuthService handles registration, login, and profile reads.
type AuthService struct {
	users *repositories.UserRepository
}

func NewAuthService(users *repositories.UserRepository) *AuthService {
	return &AuthService{users: users}
}

// TokenPair is an access token plus its longer-lived refresh token.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

// Register creates an account and returns tokens. New accounts are never
// admins; elevation happens out of band.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (models.User, TokenPair, error) {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, TokenPair{}, apperr.New(apperr.Conflict, "email already registered")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, TokenPair{}, apperr.Wrap(apperr.Internal, "check email", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, TokenPair{}, apperr.Wrap(apperr.Internal, "hash password", err)
	}

	user := models.User{Name: name, Email: email, Password: hash}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, TokenPair{}, apperr.Wrap(apperr.Internal, "create user", err)
	}

	pair, err := s.mintTokens(user)
	return user, pair, err
}

// Login verifies credentials and returns tokens. Wrong email and wrong
// password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, TokenPair{}, apperr.New(apperr.Unauthorized, "invalid credentials")
	}
	if err != nil {
		return models.User{}, TokenPair{}, apperr.Wrap(apperr.Internal, "load user", err)
	}
	if !auth.CheckPassword(user.Password, password) {
		return models.User{}, TokenPair{}, apperr.New(apperr.Unauthorized, "invalid credentials")
	}

	pair, err := s.mintTokens(user)
	return user, pair, err
}

// Profile returns the account for an authenticated user id.
func (s *AuthService) Profile(ctx context.Context, userID string) (models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, apperr.New(apperr.NotFound, "user not found")
	}
	if err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "load user", err)
	}
	return user, nil
}

// ProfileInput carries the fields an account holder may change about
// themselves. Nil pointers leave the current value alone.
type ProfileInput struct {
	Name   *string `json:"name" validate:"nullable,min=1"`
	Avatar *string `json:"avatar" validate:"nullable"`
	Bio    *string `json:"bio" validate:"nullable,max=1024"`
}

// UpdateProfile applies a partial update to the caller's own account.
// Avatars must live under the public namespace; private keys are never
// accepted here.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (models.User, error) {
	user, err := s.Profile(ctx, userID)
	if err != nil {
		return models.User{}, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Avatar != nil {
		if *in.Avatar != "" && !storage.IsPublic(*in.Avatar) {
			return models.User{}, apperr.New(apperr.Validation, "avatar must be a public storage key")
		}
		user.Avatar = *in.Avatar
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}

	if err := s.users.Update(ctx, &user); err != nil {
		return models.User{}, apperr.Wrap(apperr.Internal, "update profile", err)
	}
	return user, nil
}

func (s *AuthService) mintTokens(user models.User) (TokenPair, error) {
	caps := rbac.Strings(rbac.For(user.Admin))

	token, err := auth.GenerateToken(user.ID, user.Admin, caps)
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.Internal, "sign token", err)
	}
	refresh, err := auth.GenerateRefreshToken(user.ID, user.Admin, caps)
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.Internal, "sign refresh token", err)
	}
	return TokenPair{Token: token, RefreshToken: refresh}, nil
}
