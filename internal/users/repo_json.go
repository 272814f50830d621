package users

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/afero"

	"reporthub-backend/internal/shared/storage/jsondoc"
)

const documentName = "users.json"

// JSONRepo persists all users in a single flat JSON document.
type JSONRepo struct {
	col *jsondoc.Collection[User]
}

// NewJSONRepo constructs a JSONRepo storing its document under dataDir.
func NewJSONRepo(fs afero.Fs, dataDir string) *JSONRepo {
	return &JSONRepo{
		col: jsondoc.NewCollection[User](fs, dataDir, documentName),
	}
}

// Create persists a new user, rejecting duplicate emails case-insensitively.
func (r *JSONRepo) Create(ctx context.Context, user User) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	err := r.col.Update(func(records []User) ([]User, error) {
		if indexOfEmail(records, user.Email, "") >= 0 {
			return nil, ErrEmailExists
		}
		return append(records, user), nil
	})
	if err != nil {
		return User{}, err
	}
	return user, nil
}

// GetByID returns a user by id.
func (r *JSONRepo) GetByID(ctx context.Context, userID string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	records, err := r.col.Read()
	if err != nil {
		return User{}, err
	}
	for i := range records {
		if records[i].UserID == userID {
			return records[i], nil
		}
	}
	return User{}, ErrNotFound
}

// GetByEmail returns a user by email, matched case-insensitively.
func (r *JSONRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	records, err := r.col.Read()
	if err != nil {
		return User{}, err
	}
	if i := indexOfEmail(records, email, ""); i >= 0 {
		return records[i], nil
	}
	return User{}, ErrNotFound
}

// List returns all users.
func (r *JSONRepo) List(ctx context.Context) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.col.Read()
}

// ListByRole returns active users with the given role.
func (r *JSONRepo) ListByRole(ctx context.Context, role Role) ([]User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records, err := r.col.Read()
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, len(records))
	for i := range records {
		if records[i].Role == role && records[i].IsActive {
			out = append(out, records[i])
		}
	}
	return out, nil
}

// Update merges the supplied fields over the existing user. A changed email
// is checked for duplicates against every other user.
func (r *JSONRepo) Update(ctx context.Context, userID string, req UpdateUserRequest) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	var updated User
	err := r.col.Update(func(records []User) ([]User, error) {
		i := indexOf(records, userID)
		if i < 0 {
			return nil, ErrNotFound
		}

		user := records[i]
		if req.Email != nil {
			if indexOfEmail(records, *req.Email, userID) >= 0 {
				return nil, ErrEmailExists
			}
			user.Email = *req.Email
		}
		if req.Username != nil {
			user.Username = *req.Username
		}
		if req.FirstName != nil {
			user.FirstName = *req.FirstName
		}
		if req.LastName != nil {
			user.LastName = *req.LastName
		}
		if req.Role != nil {
			user.Role = Role(*req.Role)
		}
		if req.IsActive != nil {
			user.IsActive = *req.IsActive
		}
		user.UpdatedAt = time.Now().UTC()

		records[i] = user
		updated = user
		return records, nil
	})
	if err != nil {
		return User{}, err
	}
	return updated, nil
}

// UpdateRole replaces the user's role.
func (r *JSONRepo) UpdateRole(ctx context.Context, userID string, role Role) (User, error) {
	if err := ctx.Err(); err != nil {
		return User{}, err
	}

	var updated User
	err := r.col.Update(func(records []User) ([]User, error) {
		i := indexOf(records, userID)
		if i < 0 {
			return nil, ErrNotFound
		}
		records[i].Role = role
		records[i].UpdatedAt = time.Now().UTC()
		updated = records[i]
		return records, nil
	})
	if err != nil {
		return User{}, err
	}
	return updated, nil
}

// Delete deactivates the user, or removes the record entirely when hard is
// set.
func (r *JSONRepo) Delete(ctx context.Context, userID string, hard bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.col.Update(func(records []User) ([]User, error) {
		i := indexOf(records, userID)
		if i < 0 {
			return nil, ErrNotFound
		}
		if hard {
			return append(records[:i], records[i+1:]...), nil
		}
		records[i].IsActive = false
		records[i].UpdatedAt = time.Now().UTC()
		return records, nil
	})
}

func indexOf(records []User, userID string) int {
	for i := range records {
		if records[i].UserID == userID {
			return i
		}
	}
	return -1
}

// indexOfEmail matches case-insensitively, skipping the user with excludeID.
func indexOfEmail(records []User, email, excludeID string) int {
	for i := range records {
		if records[i].UserID == excludeID {
			continue
		}
		if strings.EqualFold(records[i].Email, email) {
			return i
		}
	}
	return -1
}

var _ Repo = (*JSONRepo)(nil)
