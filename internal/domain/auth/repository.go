package auth

import (
	"context"
	"errors"
)

var (
	// ErrEmailExists indicates a duplicate email address.
	ErrEmailExists = errors.New("email already exists")
	// ErrSubjectTaken indicates the Google account is already bound to another user.
	ErrSubjectTaken = errors.New("google account already linked")
)

// Repository abstracts user persistence.
type Repository interface {
	Create(ctx context.Context, user NewUser) (User, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	GetByID(ctx context.Context, id int64) (User, bool, error)
	GetByGoogleSubject(ctx context.Context, subject string) (User, bool, error)
	// LinkGoogle binds subject to an existing user and returns the updated row.
	LinkGoogle(ctx context.Context, userID int64, subject string) (User, error)
}
