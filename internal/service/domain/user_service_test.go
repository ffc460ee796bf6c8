package domain

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/qs-lzh/movie-watchlist/internal/auth"
	"github.com/qs-lzh/movie-watchlist/internal/model"
	"github.com/qs-lzh/movie-watchlist/internal/repository"
	"github.com/qs-lzh/movie-watchlist/internal/service"
	"github.com/qs-lzh/movie-watchlist/internal/testutil"
)

func newUserService(t *testing.T) (*userService, *auth.JWTManager) {
	t.Helper()
	tokens, err := auth.NewJWTManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	repo := repository.NewUserRepoGorm(testutil.NewDB(t))
	return NewUserService(repo, tokens, zap.NewNop()), tokens
}

func TestSignupAndLogin(t *testing.T) {
	s, tokens := newUserService(t)
	ctx := context.Background()

	result, err := s.Signup(ctx, "  Alice@Example.COM ", "alice", "secret123")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if result.User.Email != "alice@example.com" || result.User.Role != model.RoleUser {
		t.Errorf("user = %+v", result.User)
	}
	if result.User.HashedPassword == "secret123" {
		t.Error("password stored in clear")
	}

	claims, err := tokens.ValidateToken(result.Token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if id, _ := claims.UserID(); id != result.User.ID {
		t.Errorf("token subject = %d, want %d", id, result.User.ID)
	}

	login, err := s.Login(ctx, "alice@example.com", "secret123")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if login.User.ID != result.User.ID {
		t.Errorf("login user = %d, want %d", login.User.ID, result.User.ID)
	}

	if _, err := s.Login(ctx, "alice@example.com", "wrong"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v", err)
	}
	if _, err := s.Login(ctx, "nobody@example.com", "secret123"); !errors.Is(err, service.ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v", err)
	}
}

func TestSignupConflicts(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	if _, err := s.Signup(ctx, "bob@example.com", "bob", "secret123"); err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := s.Signup(ctx, "BOB@example.com", "bobby", "secret123"); !errors.Is(err, service.ErrEmailTaken) {
		t.Errorf("duplicate email error = %v", err)
	}
	if _, err := s.Signup(ctx, "robert@example.com", "bob", "secret123"); !errors.Is(err, service.ErrUsernameTaken) {
		t.Errorf("duplicate username error = %v", err)
	}
}

// raceUserRepo misses on lookups until Create runs, as if another signup
// committed between the pre-checks and the insert.
type raceUserRepo struct {
	repository.UserRepo
	stale bool
}

func (r *raceUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if r.stale {
		return nil, gorm.ErrRecordNotFound
	}
	return r.UserRepo.GetByEmail(ctx, email)
}

func (r *raceUserRepo) GetByName(ctx context.Context, name string) (*model.User, error) {
	if r.stale {
		return nil, gorm.ErrRecordNotFound
	}
	return r.UserRepo.GetByName(ctx, name)
}

func (r *raceUserRepo) Create(ctx context.Context, user *model.User) error {
	r.stale = false
	return r.UserRepo.Create(ctx, user)
}

func TestSignupConflictAtInsert(t *testing.T) {
	tokens, err := auth.NewJWTManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewJWTManager: %v", err)
	}
	repo := &raceUserRepo{UserRepo: repository.NewUserRepoGorm(testutil.NewDB(t))}
	s := NewUserService(repo, tokens, zap.NewNop())
	ctx := context.Background()

	if _, err := s.Signup(ctx, "bob@example.com", "bob", "secret123"); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	tests := []struct {
		email    string
		username string
		want     error
	}{
		{"robert@example.com", "bob", service.ErrUsernameTaken},
		{"bob@example.com", "bobby", service.ErrEmailTaken},
	}
	for _, tt := range tests {
		repo.stale = true
		if _, err := s.Signup(ctx, tt.email, tt.username, "secret123"); !errors.Is(err, tt.want) {
			t.Errorf("Signup(%s, %s) error = %v, want %v", tt.email, tt.username, err, tt.want)
		}
	}
}

func TestProfile(t *testing.T) {
	s, _ := newUserService(t)
	ctx := context.Background()

	carol, err := s.Signup(ctx, "carol@example.com", "carol", "secret123")
	if err != nil {
		t.Fatalf("Signup: %v", err)
	}
	if _, err := s.Signup(ctx, "dave@example.com", "dave", "secret123"); err != nil {
		t.Fatalf("Signup: %v", err)
	}

	user, err := s.UpdateProfile(ctx, carol.User.ID, "caroline")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if user.Name != "caroline" {
		t.Errorf("name = %q, want caroline", user.Name)
	}
	if _, err := s.UpdateProfile(ctx, carol.User.ID, "dave"); !errors.Is(err, service.ErrUsernameTaken) {
		t.Errorf("taken username error = %v", err)
	}
	if _, err := s.GetProfile(ctx, 999); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("missing profile error = %v", err)
	}
}
