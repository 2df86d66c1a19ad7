package user

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/sksmith/go-retail-ledger/core"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]{3,32}$`)

// ErrInvalidCredentials is returned by Login for a bad username or password.
// The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

type Service interface {
	Create(ctx context.Context, user CreateUserRequest) (User, error)
	Get(ctx context.Context, username string) (User, error)
	Delete(ctx context.Context, username string) error
	Login(ctx context.Context, username, password string) (User, error)
}

type service struct {
	repo Repository
}

func (s *service) Get(ctx context.Context, username string) (User, error) {
	return s.repo.Get(ctx, username)
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	if !usernamePattern.MatchString(req.Username) {
		return User{}, errors.WithMessage(core.ErrValidation, "username must be 3-32 characters of lowercase letters, digits, hyphen or underscore")
	}
	if len(req.PlainTextPassword) < minPasswordLength {
		return User{}, errors.WithMessagef(core.ErrValidation, "password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PlainTextPassword), bcrypt.DefaultCost)
	if err != nil {
		return User{}, errors.WithStack(err)
	}

	u := &User{
		Username:       req.Username,
		FullName:       req.FullName,
		HashedPassword: string(hash),
		IsAdmin:        req.IsAdmin,
		Created:        time.Now(),
	}
	if err = s.repo.Create(ctx, u); err != nil {
		return User{}, errors.WithStack(err)
	}
	return *u, nil
}

func (s *service) Delete(ctx context.Context, username string) error {
	return s.repo.Delete(ctx, username)
}

func (s *service) Login(ctx context.Context, username, password string) (User, error) {
	u, err := s.repo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, errors.WithStack(err)
	}

	if err = bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}

	return u, nil
}

type Repository interface {
	Create(ctx context.Context, user *User, tx ...core.UpdateOptions) error
	Get(ctx context.Context, username string, tx ...core.QueryOptions) (User, error)
	Delete(ctx context.Context, username string, tx ...core.UpdateOptions) error
}
