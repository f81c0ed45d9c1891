package auth

import "time"

// Platform partitions which signing secret and which route set apply.
type Platform string

const (
	PlatformDesktop Platform = "desktop"
	PlatformAdmin   Platform = "admin"
)

// User account types.
const (
	UserTypeUser  = 1
	UserTypeAdmin = 2
)

// Interop constants. The upstream contract leaves the units unspecified;
// here the lockout window is minutes and token expiry is seconds.
const (
	// MaxLoginRetryLimit is the number of consecutive failed attempts that
	// locks an account.
	MaxLoginRetryLimit = 3
	// LoginReactiveTime is how long a locked account stays locked.
	LoginReactiveTime = 20 * time.Minute
	// TokenExpiresIn is the lifetime of an issued token.
	TokenExpiresIn = 10000 * time.Second
)

// User represents an account with its transient lockout state.
type User struct {
	ID              int64
	Username        string
	Email           string
	PasswordHash    string
	UserType        int
	IsActive        bool
	IsDeleted       bool
	LoginRetryCount int
	LockedUntil     *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// NewUser constructs an account with default flags stamped explicitly
// rather than via persistence hooks.
func NewUser(username, email, passwordHash string, userType int) *User {
	return &User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		UserType:     userType,
		IsActive:     true,
		IsDeleted:    false,
	}
}

// platformAccess maps each user type to the platforms it may log in to.
var platformAccess = map[int][]Platform{
	UserTypeUser:  {PlatformDesktop},
	UserTypeAdmin: {PlatformDesktop, PlatformAdmin},
}

// CanAccess reports whether the user's account type may authenticate
// against the given platform.
func (u *User) CanAccess(platform Platform) bool {
	for _, p := range platformAccess[u.UserType] {
		if p == platform {
			return true
		}
	}
	return false
}

// Locked reports whether the account is inside its lockout window at now.
func (u *User) Locked(now time.Time) bool {
	return u.LockedUntil != nil && now.Before(*u.LockedUntil)
}
