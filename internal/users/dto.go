package users

// CreateUserRequest carries the caller-settable fields of a new user. The id
// and timestamps are assigned by the store.
type CreateUserRequest struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	IsActive  *bool  `json:"isActive"`
}

// UpdateUserRequest enumerates the mutable user fields. The id and creation
// timestamp cannot be expressed here.
type UpdateUserRequest struct {
	Email     *string `json:"email"`
	Username  *string `json:"username"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"isActive"`
}
