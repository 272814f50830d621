package users

import "context"

// Repo defines persistence operations for the user registry.
type Repo interface {
	Create(ctx context.Context, user User) (User, error)
	GetByID(ctx context.Context, userID string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
	ListByRole(ctx context.Context, role Role) ([]User, error)
	Update(ctx context.Context, userID string, req UpdateUserRequest) (User, error)
	UpdateRole(ctx context.Context, userID string, role Role) (User, error)
	Delete(ctx context.Context, userID string, hard bool) error
}
