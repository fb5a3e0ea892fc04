package user

import "context"

// Service defines the interface for user-related business logic.
type Service interface {
	RegisterUser(ctx context.Context, email, password, firstName, lastName string) (*User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	// UpdateRole changes a user's dashboard role; only admins may call this
	// (enforced at the route level).
	UpdateRole(ctx context.Context, id string, role Role) (*User, error)
}
