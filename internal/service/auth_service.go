package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"inboxiq/internal/model"
	"inboxiq/internal/util"
)

type AuthService struct {
	userStore UserStore
	jwtSecret string
}

func NewAuthService(userStore UserStore, jwtSecret string) *AuthService {
	return &AuthService{
		userStore: userStore,
		jwtSecret: jwtSecret,
	}
}

// Register creates a new user with their professional domain.
func (s *AuthService) Register(ctx context.Context, email, password, domain string) (*model.User, error) {
	existing, err := s.userStore.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hash,
		Domain:       domain,
		CreatedAt:    time.Now(),
	}

	if err := s.userStore.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	return u, nil
}

// Login checks user credentials and returns a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	u, err := s.userStore.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, errors.New("invalid email or password")
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return "", nil, errors.New("invalid email or password")
	}

	token, err := util.GenerateJWT(u.ID, u.Email, s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	return token, u, nil
}

// Profile returns the caller's user record.
func (s *AuthService) Profile(ctx context.Context, userID int) (*model.User, error) {
	u, err := s.userStore.FindByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}
