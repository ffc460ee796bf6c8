package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/movie-watchlist/internal/auth"
	"github.com/qs-lzh/movie-watchlist/internal/model"
	"github.com/qs-lzh/movie-watchlist/internal/repository"
	"github.com/qs-lzh/movie-watchlist/internal/service"
)

type UserService interface {
	Signup(ctx context.Context, email, username, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
	GetProfile(ctx context.Context, userID uint) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uint, username string) (*model.User, error)
}

type AuthResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

type userService struct {
	repo   repository.UserRepo
	tokens *auth.JWTManager
	logger *zap.Logger
}

var _ UserService = (*userService)(nil)

func NewUserService(userRepo repository.UserRepo, tokens *auth.JWTManager, logger *zap.Logger) *userService {
	return &userService{
		repo:   userRepo,
		tokens: tokens,
		logger: logger.Named("user"),
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *userService) Signup(ctx context.Context, email, username, password string) (*AuthResult, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return nil, service.ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if _, err := s.repo.GetByName(ctx, username); err == nil {
		return nil, service.ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("lookup username: %w", err)
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Email:          email,
		Name:           username,
		HashedPassword: hashed,
		Role:           model.RoleUser,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.signupConflict(ctx, email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return s.issue(user)
}

// signupConflict names the field a concurrent signup took between the
// pre-checks and the insert.
func (s *userService) signupConflict(ctx context.Context, email string) error {
	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return service.ErrEmailTaken
	}
	return service.ErrUsernameTaken
}

func (s *userService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, service.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	ok, err := auth.CheckPassword(user.HashedPassword, password)
	if err != nil {
		return nil, fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return nil, service.ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *userService) issue(user *model.User) (*AuthResult, error) {
	token, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *userService) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uint, username string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if err := s.repo.UpdateName(ctx, userID, username); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, service.ErrUsernameTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}
	return s.GetProfile(ctx, userID)
}
