package users

import "time"

// Account is the management view of a user record. The password hash never
// leaves the server.
type Account struct {
	ID              int64      `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	UserType        int        `json:"userType"`
	IsActive        bool       `json:"isActive"`
	IsDeleted       bool       `json:"isDeleted"`
	LoginRetryCount int        `json:"loginRetryCount"`
	LockedUntil     *time.Time `json:"lockedUntil,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// Input carries the client-settable fields for create and partial update.
// Password arrives in the clear and is hashed by the service before it
// touches the repository.
type Input struct {
	Username *string `json:"username" validate:"omitempty,min=3,max=64"`
	Email    *string `json:"email" validate:"omitempty,email"`
	Password *string `json:"password" validate:"omitempty,min=8,max=72"`
	UserType *int    `json:"userType" validate:"omitempty,oneof=1 2"`
	IsActive *bool   `json:"isActive"`
}

func (in Input) apply(a *Account, passwordHash string) {
	if in.Username != nil {
		a.Username = *in.Username
	}
	if in.Email != nil {
		a.Email = *in.Email
	}
	if passwordHash != "" {
		a.PasswordHash = passwordHash
	}
	if in.UserType != nil {
		a.UserType = *in.UserType
	}
	if in.IsActive != nil {
		a.IsActive = *in.IsActive
	}
}
