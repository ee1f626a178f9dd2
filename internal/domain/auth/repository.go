package auth

import (
	"context"

	"negoce/internal/core/id"
)

// Repository defines user storage operations.
type Repository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error

	GetByID(ctx context.Context, userID id.ID) (*User, error)
	GetByLogin(ctx context.Context, login string) (*User, error)

	// Exists checks whether a login is taken.
	Exists(ctx context.Context, login string) (bool, error)

	List(ctx context.Context) ([]User, error)
}
