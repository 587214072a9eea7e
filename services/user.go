package services

import (
	"context"
	"errors"
	"strings"

	"github.com/CrowderSoup/kanban/database"
)

type UserService struct {
	client database.Client
}

func NewUserService(client database.Client) *UserService {
	return &UserService{client: client}
}

// EnsureUser returns the user registered under email, creating it on first
// login.
func (s *UserService) EnsureUser(ctx context.Context, email string) (*database.User, error) {
	user, err := s.FindUser(ctx, email)
	if err == nil || !errors.Is(err, database.ErrNoRows) {
		return user, err
	}

	email = normaliseEmail(email)
	user = &database.User{}
	if err := s.client.Insert(ctx, "users", database.NewUser{Email: email}, user); err != nil {
		return nil, queryError("users", err)
	}
	return user, nil
}

// FindUser looks up the user registered under email without creating one.
// An unknown email yields database.ErrNoRows.
func (s *UserService) FindUser(ctx context.Context, email string) (*database.User, error) {
	email = normaliseEmail(email)
	if email == "" {
		return nil, ErrEmptyEmail
	}
	var user database.User
	if err := s.client.Single(ctx, database.From("users").Eq("email", email), &user); err != nil {
		return nil, queryError("users", err)
	}
	return &user, nil
}

func normaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
