package users

import (
	"context"
	"fmt"
	"strings"
	"time"

	"reporthub-backend/internal/shared/util"
)

// Service contains business logic for the user registry.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Create validates the request, fills defaults and persists the user. Email
// is required; the role must be one of the closed set; the username defaults
// to the email's local part.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (User, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" {
		return User{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	role := Role(req.Role)
	if req.Role == "" {
		role = RoleViewer
	}
	if !role.Valid() {
		return User{}, fmt.Errorf("%w: invalid role, must be one of: %s, %s, %s",
			ErrInvalidInput, RoleAdmin, RoleViewer, RoleEditor)
	}

	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = strings.SplitN(email, "@", 2)[0]
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	now := time.Now().UTC()
	user := User{
		UserID:    util.NewID(),
		Email:     email,
		Username:  username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.Repo.Create(ctx, user)
}

// GetByID returns a user by id.
func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	return s.Repo.GetByID(ctx, userID)
}

// List returns all users, or only active users with the given role when one
// is supplied.
func (s *Service) List(ctx context.Context, role string) ([]User, error) {
	if role == "" {
		return s.Repo.List(ctx)
	}
	r := Role(role)
	if !r.Valid() {
		return nil, fmt.Errorf("%w: invalid role, must be one of: %s, %s, %s",
			ErrInvalidInput, RoleAdmin, RoleViewer, RoleEditor)
	}
	return s.Repo.ListByRole(ctx, r)
}

// Update applies a partial update, validating any supplied role.
func (s *Service) Update(ctx context.Context, userID string, req UpdateUserRequest) (User, error) {
	if req.Role != nil && !Role(*req.Role).Valid() {
		return User{}, fmt.Errorf("%w: invalid role, must be one of: %s, %s, %s",
			ErrInvalidInput, RoleAdmin, RoleViewer, RoleEditor)
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) == "" {
		return User{}, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	return s.Repo.Update(ctx, userID, req)
}

// UpdateRole replaces the user's role.
func (s *Service) UpdateRole(ctx context.Context, userID, role string) (User, error) {
	r := Role(role)
	if !r.Valid() {
		return User{}, fmt.Errorf("%w: invalid role, must be one of: %s, %s, %s",
			ErrInvalidInput, RoleAdmin, RoleViewer, RoleEditor)
	}
	return s.Repo.UpdateRole(ctx, userID, r)
}

// Delete deactivates the user by default; hard deletes remove the record.
func (s *Service) Delete(ctx context.Context, userID string, hard bool) error {
	return s.Repo.Delete(ctx, userID, hard)
}
