package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/security"
)

type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
}

// EnsureAdminUser creates the admin account when email and password are both
// set and no user owns that email yet. An existing account is left untouched.
func EnsureAdminUser(ctx context.Context, users UserStore, email, password string) error {
	if email == "" || password == "" {
		return nil
	}

	_, err := users.GetByEmail(ctx, email)

	if err == nil {
		return nil
	}

	if !errors.Is(err, user.ErrNotFound) {
		return err
	}

	hash, err := security.HashPassword(password)

	if err != nil {
		return err
	}

	_, err = users.Create(ctx, user.New(email, hash, user.RoleAdmin))

	// lost a race with another instance seeding the same account
	if errors.Is(err, user.ErrEmailTaken) {
		return nil
	}
	if err == nil {
		slog.InfoContext(ctx, "admin user seeded", "email", email)
	}

	return err
}
